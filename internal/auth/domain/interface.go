package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/artfolio/auth-service/internal/auth/domain UserRepository

import (
	"context"
	"time"
)

// UserRepository is the credential store. Lookups return (nil, nil)
// when no user matches. Refresh-token mutations must be atomic per
// user: two concurrent logins both land their tokens.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	SetActive(ctx context.Context, userID string, active bool) error

	AddRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	RemoveRefreshToken(ctx context.Context, userID, token string) error
	ClearRefreshTokens(ctx context.Context, userID string) error
	HasRefreshToken(ctx context.Context, userID, token string) (bool, error)
}
