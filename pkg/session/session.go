package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrNoSession          = errors.New("no active session")
)

// AuthError is a failure reported by the identity provider during sign in or sign out.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type Session struct {
	Token      string    `json:"token"`
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signedInAt"`
	LastSeen   time.Time `json:"lastSeen"`
}

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// checkCredentials runs the checks done before the identity provider is asked.
func checkCredentials(email string, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingCredentials
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

type contextKey string

const sessionKey contextKey = "session"

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}
