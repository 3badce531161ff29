package composer

import "github.com/boredapes/ctaplanner/pkg/event"

type StubSink struct {
	Records []event.EventRecord
	Err     error
}

func (s *StubSink) Add(record event.EventRecord) error {
	if s.Err != nil {
		return s.Err
	}
	s.Records = append(s.Records, record)
	return nil
}
