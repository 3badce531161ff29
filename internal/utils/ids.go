package utils

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IdGenerator produces process-unique identifiers for records, schedule batches and sessions.
type IdGenerator interface {
	NewId() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewId() string {
	return uuid.NewString()
}

// SequenceGenerator hands out predictable ids, "<prefix>-1", "<prefix>-2", ...
type SequenceGenerator struct {
	Prefix string
	mu     sync.Mutex
	next   int
}

func (s *SequenceGenerator) NewId() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.Prefix, s.next)
}
