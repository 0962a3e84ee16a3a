package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"artemis/internal/models"
)

type mockResetService struct{ mock.Mock }

func (m *mockResetService) RequestReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockResetService) VerifyCode(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *mockResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.Called(ctx, email, code, newPassword).Error(0)
}

type mockAccountService struct{ mock.Mock }

func (m *mockAccountService) SignUp(ctx context.Context, req models.SignupRequest) (*models.Profile, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*models.Profile, *models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	p, _ := args.Get(0).(*models.Profile)
	t, _ := args.Get(1).(*models.TokenPair)
	return p, t, args.Error(2)
}

type mockFormService struct{ mock.Mock }

func (m *mockFormService) Get(ctx context.Context, userID uuid.UUID) (*models.FormContent, error) {
	args := m.Called(ctx, userID)
	fc, _ := args.Get(0).(*models.FormContent)
	return fc, args.Error(1)
}

func (m *mockFormService) Save(ctx context.Context, userID uuid.UUID, content models.FormContent) (*models.FormData, error) {
	args := m.Called(ctx, userID, content)
	fd, _ := args.Get(0).(*models.FormData)
	return fd, args.Error(1)
}

func (m *mockFormService) ExportPDF(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type mockNITService struct{ mock.Mock }

func (m *mockNITService) Search(ctx context.Context, companyName string) (*models.NITResult, error) {
	args := m.Called(ctx, companyName)
	r, _ := args.Get(0).(*models.NITResult)
	return r, args.Error(1)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
