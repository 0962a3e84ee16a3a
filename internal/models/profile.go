package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the account row the reset flow works on. ResetCode and ResetCodeExpires
// are set and cleared together.
type Profile struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	NombreCompleto   string     `json:"nombre_completo"`
	ResetCode        *string    `json:"-"`
	ResetCodeExpires *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (p *Profile) HasPendingCode() bool {
	return p.ResetCode != nil && *p.ResetCode != "" && p.ResetCodeExpires != nil
}

// DisplayName falls back to a generic greeting when the profile has no name.
func (p *Profile) DisplayName() string {
	if p.NombreCompleto == "" {
		return "Usuario"
	}
	return p.NombreCompleto
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}
