package schedule

import (
	"slices"
	"sync"

	"github.com/boredapes/ctaplanner/pkg/event"
)

// Listener receives a snapshot of the records after every change.
type Listener func(records []event.EventRecord)

type subscription struct {
	id int
	fn Listener
}

// Set is the ordered collection of records waiting to be submitted. Insertion order is
// kept; display order comes from GroupedView.
type Set struct {
	mu      sync.RWMutex
	records []event.EventRecord

	listenersMu sync.Mutex
	listeners   []subscription
	nextId      int
}

func NewSet() *Set {
	return &Set{}
}

// Add appends the record. Records are trusted as built by the composer.
func (s *Set) Add(record event.EventRecord) {
	s.mu.Lock()
	s.records = append(s.records, record)
	snapshot := slices.Clone(s.records)
	s.mu.Unlock()

	s.notify(snapshot)
}

// Remove drops the record with the given id and reports whether it was present.
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	idx := slices.IndexFunc(s.records, func(r event.EventRecord) bool { return r.Id == id })
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.records = slices.Delete(s.records, idx, idx+1)
	snapshot := slices.Clone(s.records)
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

func (s *Set) Clear() {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()

	s.notify([]event.EventRecord{})
}

// Records returns a copy of the records in insertion order.
func (s *Set) Records() []event.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Subscribe registers fn for change notifications. The returned function unsubscribes.
func (s *Set) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.nextId++
	id := s.nextId
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool { return sub.id == id })
	}
}

func (s *Set) notify(snapshot []event.EventRecord) {
	s.listenersMu.Lock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.Unlock()

	for _, sub := range listeners {
		sub.fn(snapshot)
	}
}
