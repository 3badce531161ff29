package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWrongPassword  = errors.New("wrong password")
	ErrInvalidAccount = errors.New("email and password are required")
)

type Service interface {
	CreateAccount(ctx context.Context, email string, password string) (Account, error)
	Verify(ctx context.Context, email string, password string) (User, error)
}

type ServiceImpl struct {
	repo Repository
	cost int
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo, cost: bcrypt.DefaultCost}
}

func (s *ServiceImpl) CreateAccount(ctx context.Context, email string, password string) (Account, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Account{}, ErrInvalidAccount
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password: %w", err)
	}
	account, err := s.repo.CreateAccount(ctx, Account{Email: email, PasswordHash: string(hash)})
	if err != nil {
		return Account{}, err
	}
	log.Infof("Account created for %s", account.Email)
	return account, nil
}

// Verify checks the password against the stored hash and returns the account's identity.
func (s *ServiceImpl) Verify(ctx context.Context, email string, password string) (User, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return User{}, ErrWrongPassword
	} else if err != nil {
		return User{}, fmt.Errorf("failed to compare password hash: %w", err)
	}
	return User{Email: account.Email}, nil
}
