package event_bus

const (
	SessionChangedEvent    EventType = "session.changed"
	ScheduleSubmittedEvent EventType = "schedule.submitted"
)

type SessionChangeKind string

const (
	SignedIn  SessionChangeKind = "signed_in"
	SignedOut SessionChangeKind = "signed_out"
	Expired   SessionChangeKind = "expired"
)

type SessionChanged struct {
	Kind  SessionChangeKind
	Token string
	Email string
}

// ScheduleSubmitted is published once both remote writes of a submission succeeded.
type ScheduleSubmitted struct {
	ScheduleId  string
	CreatedAt   int64
	SubmittedBy string
	Events      []SubmittedEvent
}

type SubmittedEvent struct {
	Category        string
	Timestamp       int64
	Team            string
	MembersRequired *int
}
