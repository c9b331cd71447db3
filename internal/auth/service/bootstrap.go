package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/artfolio/auth-service/config"
	"github.com/artfolio/auth-service/internal/auth/domain"
	"github.com/artfolio/auth-service/pkg/constant"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Bootstrap ensures the configured admin account exists. It runs once
// at process start; an existing admin is never touched, so restarting
// the process does not rewrite the password hash.
type Bootstrap struct {
	repo domain.UserRepository
	cfg  *config.Config
	log  *slog.Logger
}

func NewBootstrap(repo domain.UserRepository, cfg *config.Config, log *slog.Logger) *Bootstrap {
	return &Bootstrap{repo: repo, cfg: cfg, log: log}
}

func (b *Bootstrap) Run(ctx context.Context) error {
	if b.cfg.AdminEmail == "" || b.cfg.AdminPassword == "" {
		b.log.Debug("admin bootstrap skipped, no credentials configured")
		return nil
	}

	email := domain.NormalizeEmail(b.cfg.AdminEmail)

	existing, err := b.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("admin lookup failed: %w", err)
	}
	if existing != nil {
		b.log.Debug("admin user already exists", "email", email)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.cfg.AdminPassword), constant.BcryptCost)
	if err != nil {
		return fmt.Errorf("admin password hash failed: %w", err)
	}

	now := time.Now()
	admin := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         b.cfg.AdminName,
		IsActive:     true,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := b.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("admin create failed: %w", err)
	}

	b.log.Info("admin user created", "email", email)
	return nil
}
