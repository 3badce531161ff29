package google

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewCalendarService authenticates as the service account in credentialsFile. The
// account needs write access to the mirrored calendar.
func NewCalendarService(ctx context.Context, credentialsFile string) (*calendar.Service, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read Google credentials: %w", err)
	}
	jwtConfig, err := google.JWTConfigFromJSON(data, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse Google credentials: %w", err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		err := fmt.Errorf("unable to create Google Calendar service: %v", err)
		log.Error(err)
		return nil, err
	}
	return service, nil
}

// EventInserter adds a single event to a calendar.
type EventInserter interface {
	Insert(ctx context.Context, calendarId string, event *calendar.Event) error
}

type CalendarInserter struct {
	service *calendar.Service
}

func NewCalendarInserter(service *calendar.Service) *CalendarInserter {
	return &CalendarInserter{service: service}
}

func (c *CalendarInserter) Insert(ctx context.Context, calendarId string, event *calendar.Event) error {
	_, err := c.service.Events.Insert(calendarId, event).Context(ctx).Do()
	return err
}
