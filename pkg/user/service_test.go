package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var repoStub = NewStubRepository()

var service *ServiceImpl

func setup(t *testing.T) func() {
	service = NewService(repoStub)
	service.cost = bcrypt.MinCost
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func TestServiceImpl_CreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("should store a bcrypt hash and a normalized email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		account, err := service.CreateAccount(ctx, " Officer@BoredApes.gg ", "s3cret")

		// then
		require.NoError(t, err)
		assert.Equal(t, "officer@boredapes.gg", account.Email)
		assert.NotEqual(t, "s3cret", account.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("s3cret")))
	})

	t.Run("should reject a duplicate email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.CreateAccount(ctx, "officer@boredapes.gg", "s3cret")
		require.NoError(t, err)

		// when
		_, err = service.CreateAccount(ctx, "OFFICER@boredapes.gg", "other")

		// then
		assert.ErrorIs(t, err, ErrAccountExists)
	})

	t.Run("should require email and password", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.CreateAccount(ctx, "", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidAccount)

		_, err = service.CreateAccount(ctx, "officer@boredapes.gg", "")
		assert.ErrorIs(t, err, ErrInvalidAccount)
	})
}

func TestServiceImpl_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the user for a matching password", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.CreateAccount(ctx, "officer@boredapes.gg", "s3cret")
		require.NoError(t, err)

		// when
		u, err := service.Verify(ctx, "Officer@BoredApes.gg", "s3cret")

		// then
		require.NoError(t, err)
		assert.Equal(t, User{Email: "officer@boredapes.gg"}, u)
	})

	t.Run("should fail on a wrong password", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.CreateAccount(ctx, "officer@boredapes.gg", "s3cret")
		require.NoError(t, err)

		// when
		_, err = service.Verify(ctx, "officer@boredapes.gg", "guess")

		// then
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("should fail for an unknown account", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Verify(ctx, "nobody@boredapes.gg", "s3cret")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestCurrentUser(t *testing.T) {
	_, err := CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNoUser)

	ctx := WithUser(context.Background(), User{Email: "officer@boredapes.gg"})
	email, err := CurrentEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "officer@boredapes.gg", email)
}
