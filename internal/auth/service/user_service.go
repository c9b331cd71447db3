package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/artfolio/auth-service/config"
	"github.com/artfolio/auth-service/internal/auth/domain"
	"github.com/artfolio/auth-service/internal/auth/dto"
	autherror "github.com/artfolio/auth-service/internal/errors"
	"github.com/artfolio/auth-service/pkg/constant"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserService orchestrates the session lifecycle: register, login,
// refresh, logout, logout-all and profile lookup.
type UserService struct {
	repo         domain.UserRepository
	tokenService TokenGenerator
	cfg          *config.Config
}

func NewUserService(repo domain.UserRepository, tokenService TokenGenerator, cfg *config.Config) *UserService {
	return &UserService{
		repo:         repo,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	if !s.cfg.EnableRegistration {
		return nil, autherror.ErrRegistrationDisabled
	}

	email := domain.NormalizeEmail(input.Email)
	if err := validateRegistration(email, input.Password, input.Name); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), constant.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(input.Name),
		IsActive:     true,
		IsAdmin:      false, // never settable through registration
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user)
}

// Login collapses every failure cause (unknown email, deactivated
// account, wrong password, admin-only mismatch) into
// ErrInvalidCredentials so callers cannot probe which part failed.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	email := domain.NormalizeEmail(input.Email)

	if s.cfg.AdminOnlyLogin && email != domain.NormalizeEmail(s.cfg.AdminEmail) {
		return nil, autherror.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a comparison so the miss takes as long as a mismatch.
		_ = bcrypt.CompareHashAndPassword([]byte(constant.DummyPasswordHash), []byte(input.Password))
		return nil, autherror.ErrInvalidCredentials
	}

	passwordOK := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) == nil
	if !user.IsActive || !passwordOK {
		return nil, autherror.ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token is not rotated: the same one keeps working until
// logout removes it or its expiry elapses.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.RefreshResponse, error) {
	if input.RefreshToken == "" {
		return nil, autherror.ErrRefreshTokenRequired
	}

	claims, err := s.tokenService.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, autherror.ErrInvalidRefreshToken
	}

	// Membership in the active set is what makes logout stick even
	// though the token itself is still cryptographically valid.
	ok, err := s.repo.HasRefreshToken(ctx, user.ID, input.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, autherror.ErrInvalidRefreshToken
	}

	accessToken, err := s.tokenService.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &dto.RefreshResponse{AccessToken: accessToken}, nil
}

// Logout removes one refresh token from the caller's active set.
// Removing a token that is already gone is still success.
func (s *UserService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.RemoveRefreshToken(ctx, userID, refreshToken)
}

// LogoutAll empties the caller's refresh-token set. Access tokens
// already in the wild stay valid until their own short expiry; that
// tradeoff is documented, not fixed here.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	return s.repo.ClearRefreshTokens(ctx, userID)
}

func (s *UserService) Profile(ctx context.Context, userID string) (*dto.UserOutput, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUnauthenticated
	}
	return dto.NewUserOutput(user), nil
}

// ResolveAccessToken establishes caller identity for protected
// operations: verify the access token, then load the (still active)
// user it names.
func (s *UserService) ResolveAccessToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, autherror.ErrUnauthenticated
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, autherror.ErrUnauthenticated
	}

	return user, nil
}

// SetUserActive flips the account flag. Deactivation also clears the
// refresh set so a disabled account cannot mint new access tokens.
func (s *UserService) SetUserActive(ctx context.Context, userID string, active bool) error {
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	if !active {
		return s.repo.ClearRefreshTokens(ctx, userID)
	}
	return nil
}

// ForceLogout clears another user's sessions, admin path.
func (s *UserService) ForceLogout(ctx context.Context, userID string) error {
	return s.repo.ClearRefreshTokens(ctx, userID)
}

func (s *UserService) issueSession(ctx context.Context, user *domain.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokenService.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, expiresAt, err := s.tokenService.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.repo.AddRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:         dto.NewUserOutput(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func validateRegistration(email, password, name string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: malformed email", autherror.ErrValidation)
	}
	if len(password) < constant.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", autherror.ErrValidation, constant.MinPasswordLength)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", autherror.ErrValidation)
	}
	return nil
}
