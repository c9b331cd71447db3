package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken is one entry in a user's active refresh-token set, one
// per logged-in device. The store owns the set; validity additionally
// requires the token's own signature and expiry to check out.
type RefreshToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NormalizeEmail lowercases and trims an email so the unique constraint
// and every lookup agree on the same key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
