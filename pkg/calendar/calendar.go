package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/boredapes/ctaplanner/internal/utils"
	"github.com/boredapes/ctaplanner/pkg/event"
)

const (
	productId     = "-//Bored Apes//CTA Planner//EN"
	eventDuration = time.Hour
)

// Exporter renders pending schedules as iCalendar documents.
type Exporter struct {
	clock utils.Clock
}

func NewExporter(clock utils.Clock) *Exporter {
	return &Exporter{clock: clock}
}

// Export returns one VEVENT per record, starting at the record's timestamp and lasting an hour.
func (e *Exporter) Export(records []event.EventRecord) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productId)
	cal.SetXWRCalName("CTA schedule")

	stamp := e.clock.Now().UTC()
	for _, record := range records {
		start := record.StartTime()
		ev := cal.AddEvent(record.Id + "@ctaplanner")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(eventDuration))
		ev.SetSummary(Summary(record))
		if description := Description(record); description != "" {
			ev.SetDescription(description)
		}
	}
	return cal.Serialize()
}

// Summary is the category, followed by the team for team events.
func Summary(record event.EventRecord) string {
	if record.Team != nil {
		return fmt.Sprintf("%s (%s)", record.Category, *record.Team)
	}
	return string(record.Category)
}

func Description(record event.EventRecord) string {
	var lines []string
	if record.MinMembers != nil {
		lines = append(lines, fmt.Sprintf("Minimum members: %d", *record.MinMembers))
	}
	if record.Team != nil {
		lines = append(lines, fmt.Sprintf("Guild: %s", *record.Team))
	}
	return strings.Join(lines, "\n")
}
