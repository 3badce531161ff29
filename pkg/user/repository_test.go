package user

import (
	"context"
	"os"
	"testing"

	"github.com/boredapes/ctaplanner/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository) {
	ctx := context.Background()
	require.NoError(t, test_utils.TruncateAll(ctx, db))
	return ctx, NewRepository(db)
}

func TestRepositoryImpl_CreateAccount(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)

	// when
	created, err := repo.CreateAccount(ctx, Account{Email: "Officer@BoredApes.gg", PasswordHash: "hash"})
	require.NoError(t, err)

	// then
	stored, err := repo.GetAccountByEmail(ctx, "officer@boredapes.gg")
	require.NoError(t, err)
	assert.Equal(t, created.Id, stored.Id)
	assert.Equal(t, "officer@boredapes.gg", stored.Email)
	assert.Equal(t, "hash", stored.PasswordHash)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestRepositoryImpl_CreateAccount_ShouldFailForDuplicateEmail(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	_, err := repo.CreateAccount(ctx, Account{Email: "officer@boredapes.gg", PasswordHash: "hash"})
	require.NoError(t, err)

	// when
	_, err = repo.CreateAccount(ctx, Account{Email: "OFFICER@boredapes.gg", PasswordHash: "other"})

	// then
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestRepositoryImpl_GetAccountByEmail_NotFound(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	_, err := repo.GetAccountByEmail(ctx, "nobody@boredapes.gg")

	assert.ErrorIs(t, err, ErrAccountNotFound)
}
