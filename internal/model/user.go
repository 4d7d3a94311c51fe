package model

import (
	"strings"
	"time"
)

// User represents a registered account.
//
// WHY PasswordHash HAS json:"-"?
// The digest must never leave the server, even by accident (e.g. a handler
// that encodes the whole struct). The "-" tag makes encoding/json skip it.
//
// Email is always stored normalized (see NormalizeEmail); the UNIQUE
// constraint on the column therefore means "one account per address".
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// NormalizeEmail is the single definition of email equality:
// "  Alice@Example.COM " and "alice@example.com" are the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
