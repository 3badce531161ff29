package user

import (
	"context"
	"time"
)

type StubRepository struct {
	nextId int
	data   map[string]Account
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Account{}}
}

func (s *StubRepository) CreateAccount(ctx context.Context, account Account) (Account, error) {
	email := NormalizeEmail(account.Email)
	if _, ok := s.data[email]; ok {
		return Account{}, ErrAccountExists
	}
	s.nextId++
	account.Id = s.nextId
	account.Email = email
	account.CreatedAt = time.Now()
	s.data[email] = account
	return account, nil
}

func (s *StubRepository) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	account, ok := s.data[NormalizeEmail(email)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (s *StubRepository) Cleanup() {
	s.nextId = 0
	s.data = map[string]Account{}
}
