package session

import (
	"context"
	"sync"
	"time"

	"github.com/boredapes/ctaplanner/internal/event_bus"
	"github.com/boredapes/ctaplanner/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Authenticator checks credentials and returns the identity they belong to.
type Authenticator interface {
	Authenticate(ctx context.Context, email string, password string) (string, error)
}

// Provider keeps the signed-in sessions and announces their changes on the event bus.
type Provider struct {
	auth  Authenticator
	clock utils.Clock
	ids   utils.IdGenerator
	bus   *event_bus.EventBus
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]Session
}

func NewProvider(auth Authenticator, clock utils.Clock, ids utils.IdGenerator, bus *event_bus.EventBus, ttl time.Duration) *Provider {
	return &Provider{
		auth:     auth,
		clock:    clock,
		ids:      ids,
		bus:      bus,
		ttl:      ttl,
		sessions: map[string]Session{},
	}
}

func (p *Provider) SignIn(ctx context.Context, email string, password string) (Session, error) {
	if err := checkCredentials(email, password); err != nil {
		return Session{}, err
	}

	identity, err := p.auth.Authenticate(ctx, email, password)
	if err != nil {
		log.Debugf("sign in rejected for %s: %v", email, err)
		return Session{}, &AuthError{Op: "sign in", Err: err}
	}

	now := p.clock.Now()
	s := Session{Token: p.ids.NewId(), Email: identity, SignedInAt: now, LastSeen: now}
	p.mu.Lock()
	p.sessions[s.Token] = s
	p.mu.Unlock()

	log.Infof("%s signed in", identity)
	p.publish(ctx, event_bus.SignedIn, s)
	return s, nil
}

func (p *Provider) SignOut(ctx context.Context, token string) error {
	p.mu.Lock()
	s, ok := p.sessions[token]
	delete(p.sessions, token)
	p.mu.Unlock()

	if !ok {
		return &AuthError{Op: "sign out", Err: ErrNoSession}
	}
	log.Infof("%s signed out", s.Email)
	p.publish(ctx, event_bus.SignedOut, s)
	return nil
}

// Session returns the live session for token without refreshing it.
func (p *Provider) Session(token string) (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[token]
	if !ok || p.idle(s, p.clock.Now()) {
		return Session{}, false
	}
	return s, true
}

// Touch returns the live session for token and marks it as seen now.
func (p *Provider) Touch(token string) (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock.Now()
	s, ok := p.sessions[token]
	if !ok || p.idle(s, now) {
		return Session{}, false
	}
	s.LastSeen = now
	p.sessions[token] = s
	return s, true
}

// Subscribe registers fn for session changes. The returned function unsubscribes.
func (p *Provider) Subscribe(fn func(event_bus.SessionChanged)) func() {
	return event_bus.SubscribeTyped(p.bus, event_bus.SessionChangedEvent, func(e event_bus.EventT[event_bus.SessionChanged]) error {
		fn(e.Data)
		return nil
	})
}

// ExpireIdle ends every session not seen within the session ttl and returns how many ended.
func (p *Provider) ExpireIdle(now time.Time) int {
	p.mu.Lock()
	var expired []Session
	for token, s := range p.sessions {
		if p.idle(s, now) {
			expired = append(expired, s)
			delete(p.sessions, token)
		}
	}
	p.mu.Unlock()

	for _, s := range expired {
		log.Infof("session of %s expired", s.Email)
		p.publish(context.Background(), event_bus.Expired, s)
	}
	return len(expired)
}

func (p *Provider) idle(s Session, now time.Time) bool {
	return p.ttl > 0 && now.Sub(s.LastSeen) > p.ttl
}

func (p *Provider) publish(ctx context.Context, kind event_bus.SessionChangeKind, s Session) {
	err := p.bus.Publish(event_bus.NewEvent(ctx, event_bus.SessionChangedEvent, event_bus.SessionChanged{
		Kind:  kind,
		Token: s.Token,
		Email: s.Email,
	}))
	if err != nil {
		log.Warnf("session change %s of %s not fully delivered: %v", kind, s.Email, err)
	}
}
