package submission

import (
	"context"
	"slices"
	"sync"
)

// StubStore records every insert in call order. Failing collections return a StoreError.
type StubStore struct {
	mu        sync.Mutex
	Calls     []string
	Headers   []ScheduleHeader
	Rows      [][]EventRow
	failures  map[string]string
	beforeOps func(collection string)
}

func NewStubStore() *StubStore {
	return &StubStore{failures: map[string]string{}}
}

// FailOn makes inserts into collection fail with message.
func (s *StubStore) FailOn(collection string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[collection] = message
}

func (s *StubStore) ClearFailure(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, collection)
}

// OnInsert registers a hook run at the start of every insert.
func (s *StubStore) OnInsert(fn func(collection string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeOps = fn
}

func (s *StubStore) InsertSchedule(ctx context.Context, header ScheduleHeader) error {
	if err := s.record(SchedulesCollection); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Headers = append(s.Headers, header)
	return nil
}

func (s *StubStore) InsertEvents(ctx context.Context, rows []EventRow) error {
	if err := s.record(EventsCollection); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rows = append(s.Rows, slices.Clone(rows))
	return nil
}

func (s *StubStore) record(collection string) error {
	s.mu.Lock()
	hook := s.beforeOps
	s.Calls = append(s.Calls, collection)
	message, fail := s.failures[collection]
	s.mu.Unlock()

	if hook != nil {
		hook(collection)
	}
	if fail {
		return &StoreError{Collection: collection, Message: message}
	}
	return nil
}

func (s *StubStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = nil
	s.Headers = nil
	s.Rows = nil
	s.failures = map[string]string{}
	s.beforeOps = nil
}
