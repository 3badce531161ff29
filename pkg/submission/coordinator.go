package submission

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/boredapes/ctaplanner/internal/event_bus"
	"github.com/boredapes/ctaplanner/internal/utils"
	"github.com/boredapes/ctaplanner/pkg/event"
	log "github.com/sirupsen/logrus"
)

// ScheduleSet is the pending collection a submission flushes.
type ScheduleSet interface {
	Records() []event.EventRecord
	Clear()
}

// Coordinator writes a schedule header and then its event rows. The two writes are not
// atomic: a failed rows write leaves the header behind and the set untouched.
// One Coordinator serves one session; Submit is single-flight.
type Coordinator struct {
	store Store
	clock utils.Clock
	ids   utils.IdGenerator
	bus   *event_bus.EventBus
	busy  atomic.Bool
}

func NewCoordinator(store Store, clock utils.Clock, ids utils.IdGenerator, bus *event_bus.EventBus) *Coordinator {
	return &Coordinator{store: store, clock: clock, ids: ids, bus: bus}
}

// Busy reports whether a submission is in flight.
func (c *Coordinator) Busy() bool {
	return c.busy.Load()
}

// Submit persists the set's records on behalf of submittedBy and clears the set when both
// writes succeed. Every call generates a new schedule id, so retrying after a rows failure
// leaves a second header. Cancelling ctx does not abort a submission once started.
func (c *Coordinator) Submit(ctx context.Context, set ScheduleSet, submittedBy string) (Result, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return Result{Outcome: Rejected}, ErrSubmissionInFlight
	}
	defer c.busy.Store(false)

	records := set.Records()
	if len(records) == 0 {
		return Result{Outcome: Rejected}, ErrEmptySchedule
	}

	ctx = context.WithoutCancel(ctx)
	envelope := BuildEnvelope(c.ids.NewId(), c.clock.Now().Unix(), submittedBy, records)
	result := Result{ScheduleId: envelope.ScheduleId, Envelope: envelope}

	if err := c.store.InsertSchedule(ctx, envelope.Header); err != nil {
		log.Errorf("failed to write schedule %s: %v", envelope.ScheduleId, err)
		result.Outcome = HeaderFailed
		return result, fmt.Errorf("%w: %w", ErrScheduleHeaderWriteFailed, err)
	}

	if err := c.store.InsertEvents(ctx, envelope.Rows); err != nil {
		log.Errorf("failed to write %d events of schedule %s, header left without events: %v",
			len(envelope.Rows), envelope.ScheduleId, err)
		result.Outcome = RowsFailed
		return result, fmt.Errorf("%w: %w", ErrEventRowsWriteFailed, err)
	}

	set.Clear()
	result.Outcome = Success
	log.Infof("schedule %s submitted by %s with %d events", envelope.ScheduleId, submittedBy, len(envelope.Rows))

	c.publish(ctx, envelope)
	return result, nil
}

func (c *Coordinator) publish(ctx context.Context, envelope Envelope) {
	if c.bus == nil {
		return
	}
	events := make([]event_bus.SubmittedEvent, 0, len(envelope.Rows))
	for _, row := range envelope.Rows {
		e := event_bus.SubmittedEvent{
			Category:        row.Type,
			Timestamp:       row.Timestamp,
			MembersRequired: row.MembersRequired,
		}
		if row.Guild != nil {
			e.Team = *row.Guild
		}
		events = append(events, e)
	}
	err := c.bus.Publish(event_bus.NewEvent(ctx, event_bus.ScheduleSubmittedEvent, event_bus.ScheduleSubmitted{
		ScheduleId:  envelope.ScheduleId,
		CreatedAt:   envelope.CreatedAt,
		SubmittedBy: envelope.SubmittedBy,
		Events:      events,
	}))
	if err != nil {
		log.Warnf("schedule %s submitted, but a subscriber failed: %v", envelope.ScheduleId, err)
	}
}
