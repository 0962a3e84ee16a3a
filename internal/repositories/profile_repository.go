package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"artemis/internal/models"
)

type ProfileRepository interface {
	// GetByEmail returns (nil, nil) when no profile has that email.
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Create(ctx context.Context, tx *sql.Tx, p *models.Profile) error

	// SetResetCode overwrites any pending code; both columns are written by one statement.
	SetResetCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	ClearResetCode(ctx context.Context, id uuid.UUID) error
}

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{DB: db}
}

const profileColumns = `id, email, nombre_completo, reset_code, reset_code_expires, created_at, updated_at`

func scanProfile(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	var (
		code    sql.NullString
		expires sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Email, &p.NombreCompleto, &code, &expires, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if code.Valid {
		s := code.String
		p.ResetCode = &s
	}
	if expires.Valid {
		t := expires.Time
		p.ResetCodeExpires = &t
	}
	return p, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	p, err := scanProfile(r.DB.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile by email: %w", err)
	}
	return p, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile by id: %w", err)
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, tx *sql.Tx, p *models.Profile) error {
	const q = `
		INSERT INTO profiles (id, email, nombre_completo)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRowContext(ctx, q, p.ID, p.Email, p.NombreCompleto).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("profile create: %w", err)
	}
	return nil
}

func (r *profileRepository) SetResetCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	const q = `
		UPDATE profiles
		SET reset_code = $1, reset_code_expires = $2, updated_at = NOW()
		WHERE id = $3
	`
	return r.execOne(ctx, "profile set reset code", q, code, expiresAt, id)
}

func (r *profileRepository) ClearResetCode(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE profiles
		SET reset_code = NULL, reset_code_expires = NULL, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, "profile clear reset code", q, id)
}

func (r *profileRepository) execOne(ctx context.Context, op, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
