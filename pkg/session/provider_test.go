package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boredapes/ctaplanner/internal/event_bus"
	"github.com/boredapes/ctaplanner/internal/test_utils"
	"github.com/boredapes/ctaplanner/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signInTime = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

type fixture struct {
	provider *Provider
	clock    *utils.MockClock
	auth     *StubAuthenticator
	changes  *[]event_bus.SessionChanged
}

func setup(t *testing.T) fixture {
	auth := NewStubAuthenticator()
	auth.Passwords[test_utils.TestUserEmail] = test_utils.TestUserPassword
	clock := &utils.MockClock{FixedNow: signInTime}
	provider := NewProvider(auth, clock, &utils.SequenceGenerator{Prefix: "token"}, event_bus.NewEventBus(), time.Hour)

	var changes []event_bus.SessionChanged
	unsubscribe := provider.Subscribe(func(change event_bus.SessionChanged) {
		changes = append(changes, change)
	})
	t.Cleanup(unsubscribe)
	return fixture{provider: provider, clock: clock, auth: auth, changes: &changes}
}

func TestProvider_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("should open a session and announce it", func(t *testing.T) {
		// given
		f := setup(t)

		// when
		s, err := f.provider.SignIn(ctx, "Officer@BoredApes.gg", test_utils.TestUserPassword)

		// then
		require.NoError(t, err)
		assert.Equal(t, "token-1", s.Token)
		assert.Equal(t, test_utils.TestUserEmail, s.Email)
		assert.Equal(t, signInTime, s.SignedInAt)

		current, ok := f.provider.Session(s.Token)
		assert.True(t, ok)
		assert.Equal(t, s, current)
		assert.Equal(t, []event_bus.SessionChanged{{Kind: event_bus.SignedIn, Token: "token-1", Email: test_utils.TestUserEmail}}, *f.changes)
	})

	t.Run("should check the form before asking the provider", func(t *testing.T) {
		tests := []struct {
			name     string
			email    string
			password string
			err      error
		}{
			{name: "empty email", email: "", password: "x", err: ErrMissingCredentials},
			{name: "empty password", email: test_utils.TestUserEmail, password: "", err: ErrMissingCredentials},
			{name: "no domain", email: "officer@", password: "x", err: ErrInvalidEmail},
			{name: "short tld", email: "officer@boredapes.g", password: "x", err: ErrInvalidEmail},
			{name: "spaces", email: "officer @boredapes.gg", password: "x", err: ErrInvalidEmail},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// given
				f := setup(t)
				f.auth.Err = errors.New("provider must not be called")

				// when
				_, err := f.provider.SignIn(ctx, tt.email, tt.password)

				// then
				assert.ErrorIs(t, err, tt.err)
				var authErr *AuthError
				assert.False(t, errors.As(err, &authErr))
				assert.Empty(t, *f.changes)
			})
		}
	})

	t.Run("should wrap a provider rejection in an AuthError", func(t *testing.T) {
		// given
		f := setup(t)

		// when
		_, err := f.provider.SignIn(ctx, test_utils.TestUserEmail, "wrong")

		// then
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "sign in", authErr.Op)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Empty(t, *f.changes)
	})
}

func TestProvider_SignOut(t *testing.T) {
	ctx := context.Background()

	t.Run("should end the session and announce it", func(t *testing.T) {
		// given
		f := setup(t)
		s, err := f.provider.SignIn(ctx, test_utils.TestUserEmail, test_utils.TestUserPassword)
		require.NoError(t, err)

		// when
		err = f.provider.SignOut(ctx, s.Token)

		// then
		require.NoError(t, err)
		_, ok := f.provider.Session(s.Token)
		assert.False(t, ok)
		require.Len(t, *f.changes, 2)
		assert.Equal(t, event_bus.SignedOut, (*f.changes)[1].Kind)
	})

	t.Run("should fail for an unknown token", func(t *testing.T) {
		f := setup(t)

		err := f.provider.SignOut(ctx, "missing")

		var authErr *AuthError
		assert.ErrorAs(t, err, &authErr)
		assert.ErrorIs(t, err, ErrNoSession)
		assert.Empty(t, *f.changes)
	})
}

func TestProvider_ExpireIdle(t *testing.T) {
	// given
	f := setup(t)
	ctx := context.Background()
	idle, err := f.provider.SignIn(ctx, test_utils.TestUserEmail, test_utils.TestUserPassword)
	require.NoError(t, err)
	f.clock.SetNow(signInTime.Add(50 * time.Minute))
	active, err := f.provider.SignIn(ctx, test_utils.TestUserEmail, test_utils.TestUserPassword)
	require.NoError(t, err)

	// when
	f.clock.SetNow(signInTime.Add(61 * time.Minute))
	_, idleVisible := f.provider.Session(idle.Token)
	expired := f.provider.ExpireIdle(f.clock.Now())

	// then
	assert.False(t, idleVisible)
	assert.Equal(t, 1, expired)
	_, ok := f.provider.Session(active.Token)
	assert.True(t, ok)
	last := (*f.changes)[len(*f.changes)-1]
	assert.Equal(t, event_bus.SessionChanged{Kind: event_bus.Expired, Token: idle.Token, Email: test_utils.TestUserEmail}, last)
}

func TestProvider_Touch(t *testing.T) {
	// given
	f := setup(t)
	s, err := f.provider.SignIn(context.Background(), test_utils.TestUserEmail, test_utils.TestUserPassword)
	require.NoError(t, err)

	// when
	f.clock.SetNow(signInTime.Add(45 * time.Minute))
	_, ok := f.provider.Touch(s.Token)
	require.True(t, ok)
	f.clock.SetNow(signInTime.Add(90 * time.Minute))

	// then
	assert.Zero(t, f.provider.ExpireIdle(f.clock.Now()))
	current, ok := f.provider.Session(s.Token)
	assert.True(t, ok)
	assert.Equal(t, signInTime.Add(45*time.Minute), current.LastSeen)
}
