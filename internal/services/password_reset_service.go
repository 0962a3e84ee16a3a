package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"artemis/internal/models"
	"artemis/internal/repositories"
	"artemis/internal/utils"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrFieldsRequired   = errors.New("email, code and new password are required")
	ErrCodeRequired     = errors.New("email and code are required")
	ErrPasswordTooShort = errors.New("password too short")
	ErrAccountNotFound  = errors.New("user not found")
	ErrNoActiveCode     = errors.New("no active code")
	ErrCodeIncorrect    = errors.New("incorrect code")
	ErrCodeExpired      = errors.New("code expired")
)

// PasswordResetService runs the issue, verify and update steps of the reset flow.
// Each call is independent; the pending code lives only on the profile row.
type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type ResetOptions struct {
	CodeTTL           time.Duration
	MinPasswordLength int
}

type passwordResetService struct {
	profiles repositories.ProfileRepository
	emails   EmailService
	identity IdentityAdmin
	alerts   AlertService
	log      *zap.Logger

	codeTTL           time.Duration
	minPasswordLength int
	now               func() time.Time
	newCode           func() (string, error)
}

func NewPasswordResetService(
	profiles repositories.ProfileRepository,
	emails EmailService,
	identity IdentityAdmin,
	alerts AlertService,
	log *zap.Logger,
	opts ResetOptions,
) PasswordResetService {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 10 * time.Minute
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 6
	}
	if alerts == nil {
		alerts = NopAlertService{}
	}
	return &passwordResetService{
		profiles:          profiles,
		emails:            emails,
		identity:          identity,
		alerts:            alerts,
		log:               log.Named("password-reset"),
		codeTTL:           opts.CodeTTL,
		minPasswordLength: opts.MinPasswordLength,
		now:               time.Now,
		newCode:           utils.NewResetCode,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		s.log.Error("[password-reset][issue] profile lookup failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if profile == nil {
		// same answer as for a known address
		s.log.Info("[password-reset][issue] no profile for email", zap.String("email", email))
		return nil
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	expiresAt := s.now().Add(s.codeTTL)
	if err := s.profiles.SetResetCode(ctx, profile.ID, code, expiresAt); err != nil {
		s.log.Error("[password-reset][issue] store code failed", zap.Stringer("profile_id", profile.ID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := s.emails.SendPasswordResetCode(ctx, profile.Email, profile.DisplayName(), code, s.codeTTL); err != nil {
		// the stored code is kept; it stays valid until expiry or the next request
		s.log.Error("[password-reset][issue] code stored but email failed",
			zap.Stringer("profile_id", profile.ID), zap.Time("expires_at", expiresAt), zap.Error(err))
		s.alerts.Notify(ctx, fmt.Sprintf("Reset code for %s was stored but the email failed: %v", profile.Email, err))
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	s.log.Info("[password-reset][issue] code sent", zap.Stringer("profile_id", profile.ID), zap.Time("expires_at", expiresAt))
	return nil
}

func (s *passwordResetService) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return ErrCodeRequired
	}

	profile, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if err := s.checkCode(profile, code); err != nil {
		s.log.Info("[password-reset][verify] rejected", zap.Stringer("profile_id", profile.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" || newPassword == "" {
		return ErrFieldsRequired
	}
	if utf8.RuneCountInString(newPassword) < s.minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooShort, s.minPasswordLength)
	}

	profile, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if err := s.checkCode(profile, code); err != nil {
		s.log.Info("[password-reset][update] rejected", zap.Stringer("profile_id", profile.ID), zap.Error(err))
		return err
	}

	if err := s.identity.UpdatePassword(ctx, profile.ID, newPassword); err != nil {
		s.log.Error("[password-reset][update] identity update failed", zap.Stringer("profile_id", profile.ID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrIdentity, err)
	}

	if err := s.profiles.ClearResetCode(ctx, profile.ID); err != nil {
		// password already changed; the old code stays usable until it expires
		s.log.Error("[password-reset][update] password changed but code not cleared",
			zap.Stringer("profile_id", profile.ID), zap.Error(err))
		s.alerts.Notify(ctx, fmt.Sprintf("Residual reset code for %s could not be cleared: %v", profile.Email, err))
	}

	s.log.Info("[password-reset][update] password changed", zap.Stringer("profile_id", profile.ID))
	return nil
}

func (s *passwordResetService) lookup(ctx context.Context, email string) (*models.Profile, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		s.log.Error("[password-reset] profile lookup failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if profile == nil {
		return nil, ErrAccountNotFound
	}
	return profile, nil
}

// checkCode is shared by verify and update so both apply the same rules in the same order.
func (s *passwordResetService) checkCode(p *models.Profile, submitted string) error {
	if !p.HasPendingCode() {
		return ErrNoActiveCode
	}
	if subtle.ConstantTimeCompare([]byte(*p.ResetCode), []byte(submitted)) != 1 {
		return ErrCodeIncorrect
	}
	if s.now().After(*p.ResetCodeExpires) {
		return ErrCodeExpired
	}
	return nil
}
