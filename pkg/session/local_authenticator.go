package session

import (
	"context"
	"errors"

	"github.com/boredapes/ctaplanner/pkg/user"
)

// LocalAuthenticator checks credentials against the local account table.
type LocalAuthenticator struct {
	accounts user.Service
}

func NewLocalAuthenticator(accounts user.Service) *LocalAuthenticator {
	return &LocalAuthenticator{accounts: accounts}
}

func (a *LocalAuthenticator) Authenticate(ctx context.Context, email string, password string) (string, error) {
	u, err := a.accounts.Verify(ctx, email, password)
	if errors.Is(err, user.ErrAccountNotFound) || errors.Is(err, user.ErrWrongPassword) {
		return "", ErrInvalidCredentials
	} else if err != nil {
		return "", err
	}
	return u.Email, nil
}
