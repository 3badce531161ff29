package session

import (
	"context"

	"github.com/boredapes/ctaplanner/pkg/user"
)

// StubAuthenticator accepts the configured email/password pairs.
type StubAuthenticator struct {
	Passwords map[string]string
	Err       error
}

func NewStubAuthenticator() *StubAuthenticator {
	return &StubAuthenticator{Passwords: map[string]string{}}
}

func (s *StubAuthenticator) Authenticate(ctx context.Context, email string, password string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	email = user.NormalizeEmail(email)
	if stored, ok := s.Passwords[email]; !ok || stored != password {
		return "", ErrInvalidCredentials
	}
	return email, nil
}
