// Package memory is a mutex-guarded in-memory credential store, used
// by tests and available as a store driver for local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/artfolio/auth-service/internal/auth/domain"
	autherror "github.com/artfolio/auth-service/internal/errors"
)

type record struct {
	user   domain.User
	tokens []domain.RefreshToken
}

type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*record
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*record),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := r.byID[id].user
	return &u, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	u := rec.user
	return &u, nil
}

func (r *MemoryRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return autherror.ErrEmailAlreadyInUse
	}

	r.byID[user.ID] = &record{user: *user}
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryRepository) SetActive(_ context.Context, userID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.byID[userID]; ok {
		rec.user.IsActive = active
		rec.user.UpdatedAt = time.Now()
	}
	return nil
}

func (r *MemoryRepository) AddRefreshToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[userID]
	if !ok {
		return nil
	}
	rec.tokens = append(rec.tokens, domain.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *MemoryRepository) RemoveRefreshToken(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[userID]
	if !ok {
		return nil
	}
	kept := rec.tokens[:0]
	for _, t := range rec.tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	rec.tokens = kept
	return nil
}

func (r *MemoryRepository) ClearRefreshTokens(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.byID[userID]; ok {
		rec.tokens = nil
	}
	return nil
}

func (r *MemoryRepository) HasRefreshToken(_ context.Context, userID, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[userID]
	if !ok {
		return false, nil
	}
	now := time.Now()
	for _, t := range rec.tokens {
		if t.Token == token && t.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// TokenCount reports the live size of a user's active set; test hook.
func (r *MemoryRepository) TokenCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[userID]
	if !ok {
		return 0
	}
	return len(rec.tokens)
}
