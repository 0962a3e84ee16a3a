package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"artemis/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE for a broken UNIQUE constraint.
const uniqueViolation = "23505"

type AuthUserRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	Create(ctx context.Context, tx *sql.Tx, u *models.AuthUser) error
	GetByEmail(ctx context.Context, email string) (*models.AuthUser, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type authUserRepository struct {
	DB *sql.DB
}

func NewAuthUserRepository(db *sql.DB) AuthUserRepository {
	return &authUserRepository{DB: db}
}

func (r *authUserRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.DB.BeginTx(ctx, nil)
}

func (r *authUserRepository) Create(ctx context.Context, tx *sql.Tx, u *models.AuthUser) error {
	const q = `
		INSERT INTO auth_users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := tx.QueryRowContext(ctx, q, u.ID, u.Email, u.PasswordHash).Scan(&u.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("auth user create: %w", err)
	}
	return nil
}

func (r *authUserRepository) GetByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM auth_users
		WHERE email = $1
	`
	u := &models.AuthUser{}
	err := r.DB.QueryRowContext(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth user by email: %w", err)
	}
	return u, nil
}

func (r *authUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE auth_users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("auth user update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("auth user update password: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("auth user update password: %w", ErrNotFound)
	}
	return nil
}
