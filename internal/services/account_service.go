package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"artemis/internal/models"
	"artemis/internal/repositories"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrNameRequired       = errors.New("full name is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

type AccountService interface {
	SignUp(ctx context.Context, req models.SignupRequest) (*models.Profile, error)
	Login(ctx context.Context, email, password string) (*models.Profile, *models.TokenPair, error)
}

type accountService struct {
	users             repositories.AuthUserRepository
	profiles          repositories.ProfileRepository
	auth              AuthService
	emails            EmailService
	log               *zap.Logger
	minPasswordLength int
}

func NewAccountService(
	users repositories.AuthUserRepository,
	profiles repositories.ProfileRepository,
	auth AuthService,
	emails EmailService,
	log *zap.Logger,
	minPasswordLength int,
) AccountService {
	if minPasswordLength <= 0 {
		minPasswordLength = 8
	}
	return &accountService{
		users:             users,
		profiles:          profiles,
		auth:              auth,
		emails:            emails,
		log:               log.Named("auth"),
		minPasswordLength: minPasswordLength,
	}
}

func (s *accountService) SignUp(ctx context.Context, req models.SignupRequest) (*models.Profile, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.NombreCompleto)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrNameRequired
	}
	if utf8.RuneCountInString(req.Password) < s.minPasswordLength {
		return nil, fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooShort, s.minPasswordLength)
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	tx, err := s.users.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	user := &models.AuthUser{ID: uuid.New(), Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, tx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	profile := &models.Profile{ID: user.ID, Email: email, NombreCompleto: name}
	if err := s.profiles.Create(ctx, tx, profile); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.log.Info("[auth][signup] account created", zap.Stringer("user_id", user.ID))

	if err := s.emails.SendWelcomeEmail(ctx, email, name); err != nil {
		// warn but do not fail creation
		s.log.Warn("[auth][signup] welcome email failed", zap.String("email", email), zap.Error(err))
	}
	return profile, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*models.Profile, *models.TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if user == nil {
		s.log.Info("[auth][login] unknown email", zap.String("email", email))
		return nil, nil, ErrInvalidCredentials
	}
	if !s.auth.CheckPassword(user.PasswordHash, password) {
		s.log.Info("[auth][login] password mismatch", zap.Stringer("user_id", user.ID))
		return nil, nil, ErrInvalidCredentials
	}

	profile, err := s.profiles.GetByID(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if profile == nil {
		profile = &models.Profile{ID: user.ID, Email: user.Email}
	}

	token, exp, err := s.auth.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("[auth][login] success", zap.Stringer("user_id", user.ID))
	return profile, &models.TokenPair{AccessToken: token, ExpiresAt: exp}, nil
}
