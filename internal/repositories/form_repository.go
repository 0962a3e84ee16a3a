package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"artemis/internal/models"
)

type FormRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.FormData, error)
	Upsert(ctx context.Context, userID uuid.UUID, content models.FormContent) (*models.FormData, error)
}

type formRepository struct {
	DB *sql.DB
}

func NewFormRepository(db *sql.DB) FormRepository {
	return &formRepository{DB: db}
}

func (r *formRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.FormData, error) {
	const q = `
		SELECT id, user_id, form_content, created_at, updated_at
		FROM form_data
		WHERE user_id = $1
	`
	fd := &models.FormData{}
	var raw []byte
	err := r.DB.QueryRowContext(ctx, q, userID).Scan(&fd.ID, &fd.UserID, &raw, &fd.CreatedAt, &fd.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("form by user: %w", err)
	}
	if err := json.Unmarshal(raw, &fd.FormContent); err != nil {
		return nil, fmt.Errorf("form by user: decode content: %w", err)
	}
	return fd, nil
}

// Upsert keeps one row per user: the first save inserts, later saves replace form_content.
func (r *formRepository) Upsert(ctx context.Context, userID uuid.UUID, content models.FormContent) (*models.FormData, error) {
	const q = `
		INSERT INTO form_data (id, user_id, form_content)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET form_content = EXCLUDED.form_content, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("form upsert: encode content: %w", err)
	}
	fd := &models.FormData{UserID: userID, FormContent: content}
	if err := r.DB.QueryRowContext(ctx, q, uuid.New(), userID, string(raw)).Scan(&fd.ID, &fd.CreatedAt, &fd.UpdatedAt); err != nil {
		return nil, fmt.Errorf("form upsert: %w", err)
	}
	return fd, nil
}
