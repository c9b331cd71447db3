package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artfolio/auth-service/internal/auth/domain"
	autherror "github.com/artfolio/auth-service/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PgxIface is the slice of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db      PgxIface
	timeout time.Duration
}

func NewPostgresRepository(db PgxIface, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{db: db, timeout: timeout}
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, email, password_hash, name, is_active, is_admin, created_at, updated_at
		FROM users
		WHERE email = $1
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, email, password_hash, name, is_active, is_admin, created_at, updated_at
		FROM users
		WHERE id = $1
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
        INSERT INTO users (id, email, password_hash, name, is_active, is_admin, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, user.ID, user.Email, user.PasswordHash, user.Name, user.IsActive, user.IsAdmin, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return autherror.ErrEmailAlreadyInUse
		}
		return storeErr("create user", err)
	}

	return nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, userID string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1
	`, userID, active)
	if err != nil {
		return storeErr("set active", err)
	}

	return nil
}

func (r *PostgresRepository) AddRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	if err != nil {
		return storeErr("add refresh token", err)
	}

	return nil
}

func (r *PostgresRepository) RemoveRefreshToken(ctx context.Context, userID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		DELETE FROM refresh_tokens WHERE user_id = $1 AND token = $2
	`, userID, token)
	if err != nil {
		return storeErr("remove refresh token", err)
	}

	return nil
}

func (r *PostgresRepository) ClearRefreshTokens(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		DELETE FROM refresh_tokens WHERE user_id = $1
	`, userID)
	if err != nil {
		return storeErr("clear refresh tokens", err)
	}

	return nil
}

func (r *PostgresRepository) HasRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Expired rows are excluded here instead of being swept by a
	// background job.
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE user_id = $1 AND token = $2 AND expires_at > now()
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, token).Scan(&exists); err != nil {
		return false, storeErr("check refresh token", err)
	}

	return exists, nil
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.IsActive, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("scan user", err)
	}

	return &user, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", autherror.ErrStoreUnavailable, op, err)
}
