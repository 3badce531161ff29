package google

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boredapes/ctaplanner/internal/event_bus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
)

const (
	mirroredEventDuration = time.Hour
	mirrorTimeout         = 30 * time.Second
)

// Mirror copies submitted schedules into a shared Google Calendar. It never influences a
// submission: the schedule is already stored when the mirror sees it, and the copy runs
// in the background so the submitter is not held up by Google.
type Mirror struct {
	inserter   EventInserter
	calendarId string

	running sync.WaitGroup
}

func NewMirror(inserter EventInserter, calendarId string) *Mirror {
	return &Mirror{inserter: inserter, calendarId: calendarId}
}

// Subscribe starts mirroring submitted schedules published on bus.
func (m *Mirror) Subscribe(bus *event_bus.EventBus) func() {
	return event_bus.SubscribeTyped(bus, event_bus.ScheduleSubmittedEvent, func(e event_bus.EventT[event_bus.ScheduleSubmitted]) error {
		m.running.Go(func() { m.mirror(e) })
		return nil
	})
}

// Wait blocks until every started copy has finished.
func (m *Mirror) Wait() {
	m.running.Wait()
}

func (m *Mirror) mirror(e event_bus.EventT[event_bus.ScheduleSubmitted]) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(e.Context()), mirrorTimeout)
	defer cancel()

	submitted := e.Data
	failed := 0
	for _, ev := range submitted.Events {
		if err := m.inserter.Insert(ctx, m.calendarId, toGoogleEvent(submitted, ev)); err != nil {
			log.Errorf("unable to insert event in Google Calendar: %v", err)
			failed++
		}
	}
	if failed > 0 {
		log.Warnf("schedule %s mirrored with %d of %d events missing", submitted.ScheduleId, failed, len(submitted.Events))
		return
	}
	log.Debugf("schedule %s mirrored to Google Calendar", submitted.ScheduleId)
}

func toGoogleEvent(schedule event_bus.ScheduleSubmitted, ev event_bus.SubmittedEvent) *calendar.Event {
	start := time.Unix(ev.Timestamp, 0).UTC()
	summary := ev.Category
	if ev.Team != "" {
		summary = fmt.Sprintf("%s (%s)", ev.Category, ev.Team)
	}

	lines := []string{fmt.Sprintf("Scheduled by %s", schedule.SubmittedBy)}
	if ev.MembersRequired != nil {
		lines = append(lines, fmt.Sprintf("Minimum members: %d", *ev.MembersRequired))
	}

	return &calendar.Event{
		Summary:     summary,
		Description: strings.Join(lines, "\n"),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: "UTC"},
		End:         &calendar.EventDateTime{DateTime: start.Add(mirroredEventDuration).Format(time.RFC3339), TimeZone: "UTC"},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{"scheduleId": schedule.ScheduleId},
		},
	}
}
