package session

import (
	"sync"

	"github.com/boredapes/ctaplanner/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// Dropper releases whatever state is held for a session token.
type Dropper interface {
	Drop(token string)
}

// Gate ties the lifetime of per-session state to the provider's sessions.
type Gate struct {
	provider *Provider
	dropper  Dropper

	mu          sync.Mutex
	unsubscribe func()
}

func NewGate(provider *Provider, dropper Dropper) *Gate {
	return &Gate{provider: provider, dropper: dropper}
}

// Init subscribes to session changes. Calling it twice has no effect.
func (g *Gate) Init() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unsubscribe != nil {
		return
	}
	g.unsubscribe = g.provider.Subscribe(g.onChange)
	log.Debug("session gate initialized")
}

// Teardown unsubscribes from session changes.
func (g *Gate) Teardown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unsubscribe == nil {
		return
	}
	g.unsubscribe()
	g.unsubscribe = nil
	log.Debug("session gate torn down")
}

// Authorize returns the live session for token.
func (g *Gate) Authorize(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	s, ok := g.provider.Touch(token)
	if !ok {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (g *Gate) onChange(change event_bus.SessionChanged) {
	switch change.Kind {
	case event_bus.SignedOut, event_bus.Expired:
		g.dropper.Drop(change.Token)
	}
}
