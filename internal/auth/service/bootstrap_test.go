package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/artfolio/auth-service/config"
	"github.com/artfolio/auth-service/internal/auth/domain"
	"github.com/artfolio/auth-service/internal/auth/repository/memory"
	"github.com/artfolio/auth-service/internal/auth/service"
	"github.com/artfolio/auth-service/internal/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBootstrap_CreatesAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	cfg := &config.Config{
		AdminEmail:    "Admin@Example.com",
		AdminPassword: "admin-password",
		AdminName:     "Administrator",
	}

	var created *domain.User
	mockRepo.EXPECT().GetByEmail(gomock.Any(), "admin@example.com").Return(nil, nil)
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			created = u
			return nil
		})

	err := service.NewBootstrap(mockRepo, cfg, discardLogger()).Run(context.Background())

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "admin@example.com", created.Email)
	assert.True(t, created.IsAdmin)
	assert.True(t, created.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("admin-password")))
}

func TestBootstrap_ExistingAdminUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	cfg := &config.Config{
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password",
	}

	existing := &domain.User{ID: "admin-1", Email: "admin@example.com", IsAdmin: true}

	// No Create expectation: a second run must not rewrite anything.
	mockRepo.EXPECT().GetByEmail(gomock.Any(), "admin@example.com").Return(existing, nil)

	err := service.NewBootstrap(mockRepo, cfg, discardLogger()).Run(context.Background())
	assert.NoError(t, err)
}

func TestBootstrap_SkippedWithoutCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)

	err := service.NewBootstrap(mockRepo, &config.Config{}, discardLogger()).Run(context.Background())
	assert.NoError(t, err)
}

func TestBootstrap_StoreErrorSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	cfg := &config.Config{AdminEmail: "admin@example.com", AdminPassword: "admin-password"}

	mockRepo.EXPECT().GetByEmail(gomock.Any(), "admin@example.com").Return(nil, errors.New("store down"))

	err := service.NewBootstrap(mockRepo, cfg, discardLogger()).Run(context.Background())
	assert.Error(t, err)
}

// Two runs against a real store: one admin, hash unchanged.
func TestBootstrap_IdempotentAcrossRestarts(t *testing.T) {
	repo := memory.NewMemoryRepository()
	cfg := &config.Config{
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password",
		AdminName:     "Administrator",
	}
	ctx := context.Background()

	require.NoError(t, service.NewBootstrap(repo, cfg, discardLogger()).Run(ctx))

	first, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, service.NewBootstrap(repo, cfg, discardLogger()).Run(ctx))

	second, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PasswordHash, second.PasswordHash)
}
