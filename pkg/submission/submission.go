package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/boredapes/ctaplanner/pkg/event"
)

var (
	ErrEmptySchedule             = errors.New("please add at least one event to the schedule")
	ErrScheduleHeaderWriteFailed = errors.New("schedule header write failed")
	ErrEventRowsWriteFailed      = errors.New("event rows write failed")
	ErrSubmissionInFlight        = errors.New("a submission is already in progress")
)

const (
	SchedulesCollection = "schedules"
	EventsCollection    = "events"
)

// ScheduleHeader is the row written to the schedules collection.
type ScheduleHeader struct {
	Id        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	CreatedBy string `json:"created_by"`
}

// EventRow is the row written to the events collection. Record id, date and time are
// not stored; they follow from Timestamp.
type EventRow struct {
	ScheduleId      string  `json:"schedule_id"`
	Type            string  `json:"type"`
	Timestamp       int64   `json:"timestamp"`
	Guild           *string `json:"guild"`
	MembersRequired *int    `json:"members_required"`
}

// Envelope is everything one submission writes.
type Envelope struct {
	ScheduleId  string
	CreatedAt   int64
	SubmittedBy string
	Header      ScheduleHeader
	Rows        []EventRow
}

func BuildEnvelope(scheduleId string, createdAt int64, submittedBy string, records []event.EventRecord) Envelope {
	rows := make([]EventRow, 0, len(records))
	for _, record := range records {
		row := EventRow{
			ScheduleId: scheduleId,
			Type:       string(record.Category),
			Timestamp:  record.Timestamp,
		}
		if record.Team != nil {
			guild := string(*record.Team)
			row.Guild = &guild
		}
		if record.MinMembers != nil {
			members := *record.MinMembers
			row.MembersRequired = &members
		}
		rows = append(rows, row)
	}
	return Envelope{
		ScheduleId:  scheduleId,
		CreatedAt:   createdAt,
		SubmittedBy: submittedBy,
		Header:      ScheduleHeader{Id: scheduleId, Timestamp: createdAt, CreatedBy: submittedBy},
		Rows:        rows,
	}
}

// Store inserts rows into the remote collections.
type Store interface {
	InsertSchedule(ctx context.Context, header ScheduleHeader) error
	InsertEvents(ctx context.Context, rows []EventRow) error
}

// StoreError is a failed insert, carrying the store's own message.
type StoreError struct {
	Collection string
	Message    string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Collection, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

type Outcome string

const (
	Success      Outcome = "success"
	HeaderFailed Outcome = "header_failed"
	RowsFailed   Outcome = "rows_failed"
	// Rejected means nothing was written: the schedule was empty or a submission was in flight.
	Rejected Outcome = "rejected"
)

type Result struct {
	Outcome    Outcome
	ScheduleId string
	Envelope   Envelope
}
