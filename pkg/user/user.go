package user

import (
	"strings"
	"time"
)

// User is the identity a request acts on behalf of. Email is the identity recorded as a
// schedule's creator.
type User struct {
	Email string
}

// Account is a locally stored credential.
type Account struct {
	Id           int
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
