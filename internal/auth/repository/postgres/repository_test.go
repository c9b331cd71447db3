package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/artfolio/auth-service/internal/auth/domain"
	repo "github.com/artfolio/auth-service/internal/auth/repository/postgres"
	autherror "github.com/artfolio/auth-service/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

var userColumns = []string{"id", "email", "password_hash", "name", "is_active", "is_admin", "created_at", "updated_at"}

func TestGetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock, testTimeout)
	ctx := context.Background()
	userEmail := "test@example.com"

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs(userEmail).
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow("user-123", userEmail, "hash", "Test", true, false, time.Now(), time.Now()))

		user, err := r.GetByEmail(ctx, userEmail)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "user-123", user.ID)
		assert.True(t, user.IsActive)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs(userEmail).
			WillReturnError(pgx.ErrNoRows)

		user, err := r.GetByEmail(ctx, userEmail)
		require.NoError(t, err) // Should return nil user, nil error
		assert.Nil(t, user)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs(userEmail).
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.GetByEmail(ctx, userEmail)
		assert.ErrorIs(t, err, autherror.ErrStoreUnavailable)
	})
}

func TestGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock, testTimeout)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs("user-123").
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow("user-123", "test@example.com", "hash", "Test", true, true, time.Now(), time.Now()))

		user, err := r.GetByID(ctx, "user-123")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.True(t, user.IsAdmin)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		user, err := r.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock, testTimeout)
	ctx := context.Background()

	userToCreate := &domain.User{
		ID:           "user-123",
		Email:        "new@example.com",
		PasswordHash: "new-hash",
		Name:         "New User",
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(userToCreate.ID, userToCreate.Email, userToCreate.PasswordHash, userToCreate.Name,
				userToCreate.IsActive, userToCreate.IsAdmin, userToCreate.CreatedAt, userToCreate.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := r.Create(ctx, userToCreate)
		assert.NoError(t, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(userToCreate.ID, userToCreate.Email, userToCreate.PasswordHash, userToCreate.Name,
				userToCreate.IsActive, userToCreate.IsAdmin, userToCreate.CreatedAt, userToCreate.UpdatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := r.Create(ctx, userToCreate)
		assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(userToCreate.ID, userToCreate.Email, userToCreate.PasswordHash, userToCreate.Name,
				userToCreate.IsActive, userToCreate.IsAdmin, userToCreate.CreatedAt, userToCreate.UpdatedAt).
			WillReturnError(fmt.Errorf("db error"))

		err := r.Create(ctx, userToCreate)
		assert.ErrorIs(t, err, autherror.ErrStoreUnavailable)
	})
}

func TestRefreshTokenSet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock, testTimeout)
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	t.Run("add", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO refresh_tokens").
			WithArgs("tok-1", "user-123", expiresAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, r.AddRefreshToken(ctx, "user-123", "tok-1", expiresAt))
	})

	t.Run("remove", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM refresh_tokens").
			WithArgs("user-123", "tok-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, r.RemoveRefreshToken(ctx, "user-123", "tok-1"))
	})

	t.Run("remove absent token is still success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM refresh_tokens").
			WithArgs("user-123", "tok-gone").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.NoError(t, r.RemoveRefreshToken(ctx, "user-123", "tok-gone"))
	})

	t.Run("clear", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM refresh_tokens").
			WithArgs("user-123").
			WillReturnResult(pgxmock.NewResult("DELETE", 3))

		assert.NoError(t, r.ClearRefreshTokens(ctx, "user-123"))
	})

	t.Run("has token", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("user-123", "tok-1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := r.HasRefreshToken(ctx, "user-123", "tok-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("has token error", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("user-123", "tok-1").
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.HasRefreshToken(ctx, "user-123", "tok-1")
		assert.ErrorIs(t, err, autherror.ErrStoreUnavailable)
	})
}

func TestSetActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock, testTimeout)

	mock.ExpectExec("UPDATE users").
		WithArgs("user-123", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, r.SetActive(context.Background(), "user-123", false))
}
