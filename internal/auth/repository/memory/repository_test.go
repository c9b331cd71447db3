package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/artfolio/auth-service/internal/auth/domain"
	"github.com/artfolio/auth-service/internal/auth/repository/memory"
	autherror "github.com/artfolio/auth-service/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(id, email string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryRepository_CreateAndLookup(t *testing.T) {
	repo := memory.NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("u1", "a@example.com")))

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := repo.Create(ctx, newUser("u2", "a@example.com"))
		assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
	})

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := repo.GetByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, "u1", byEmail.ID)

		byID, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "a@example.com", byID.Email)
	})

	t.Run("missing user is nil, nil", func(t *testing.T) {
		u, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, u)
	})
}

func TestMemoryRepository_RefreshTokenSet(t *testing.T) {
	repo := memory.NewMemoryRepository()
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, newUser("u1", "a@example.com")))
	require.NoError(t, repo.AddRefreshToken(ctx, "u1", "tok-1", expiry))
	require.NoError(t, repo.AddRefreshToken(ctx, "u1", "tok-2", expiry))

	t.Run("membership", func(t *testing.T) {
		ok, err := repo.HasRefreshToken(ctx, "u1", "tok-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.HasRefreshToken(ctx, "u1", "tok-unknown")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired entries are invisible", func(t *testing.T) {
		require.NoError(t, repo.AddRefreshToken(ctx, "u1", "tok-old", time.Now().Add(-time.Minute)))

		ok, err := repo.HasRefreshToken(ctx, "u1", "tok-old")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("remove one leaves the rest", func(t *testing.T) {
		require.NoError(t, repo.RemoveRefreshToken(ctx, "u1", "tok-1"))

		ok, _ := repo.HasRefreshToken(ctx, "u1", "tok-1")
		assert.False(t, ok)
		ok, _ = repo.HasRefreshToken(ctx, "u1", "tok-2")
		assert.True(t, ok)
	})

	t.Run("remove absent token is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.RemoveRefreshToken(ctx, "u1", "tok-1"))
	})

	t.Run("clear empties the set", func(t *testing.T) {
		require.NoError(t, repo.ClearRefreshTokens(ctx, "u1"))
		assert.Zero(t, repo.TokenCount("u1"))
	})
}

func TestMemoryRepository_ConcurrentTokenAppends(t *testing.T) {
	repo := memory.NewMemoryRepository()
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, newUser("u1", "a@example.com")))

	const logins = 50
	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = repo.AddRefreshToken(ctx, "u1", fmt.Sprintf("tok-%d", n), expiry)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, logins, repo.TokenCount("u1"))
}

func TestMemoryRepository_SetActive(t *testing.T) {
	repo := memory.NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("u1", "a@example.com")))
	require.NoError(t, repo.SetActive(ctx, "u1", false))

	u, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}
