package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

const uniqueViolation = "23505"

type Repository interface {
	CreateAccount(ctx context.Context, account Account) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) CreateAccount(ctx context.Context, account Account) (Account, error) {
	query := `INSERT INTO account (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, NormalizeEmail(account.Email), account.PasswordHash).
		Scan(&account.Id, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Account{}, ErrAccountExists
		}
		log.Errorf("failed to create account: %v", err)
		return Account{}, err
	}
	account.Email = NormalizeEmail(account.Email)
	return account, nil
}

func (r *RepositoryImpl) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	query := `SELECT id, email, password_hash, created_at FROM account WHERE email = $1`
	var account Account
	err := r.db.QueryRow(ctx, query, NormalizeEmail(email)).
		Scan(&account.Id, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	} else if err != nil {
		log.Errorf("failed to get account: %v", err)
		return Account{}, err
	}
	return account, nil
}
