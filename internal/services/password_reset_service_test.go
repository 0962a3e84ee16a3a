package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"artemis/internal/models"
)

type resetFixture struct {
	svc      *passwordResetService
	profiles *fakeProfiles
	emails   *recordingEmails
	identity *mockIdentity
	alerts   *recordingAlerts
	clock    *fakeClock
	user     *models.Profile
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	user := &models.Profile{ID: uuid.New(), Email: "user@x.com", NombreCompleto: "Ana Pérez"}
	f := &resetFixture{
		profiles: newFakeProfiles(user),
		emails:   &recordingEmails{},
		identity: &mockIdentity{},
		alerts:   &recordingAlerts{},
		clock:    &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		user:     user,
	}
	svc := NewPasswordResetService(f.profiles, f.emails, f.identity, f.alerts, zap.NewNop(),
		ResetOptions{CodeTTL: 10 * time.Minute, MinPasswordLength: 6}).(*passwordResetService)
	svc.now = f.clock.Now
	f.svc = svc
	return f
}

// codes makes newCode return the given values in order.
func (f *resetFixture) codes(values ...string) {
	i := 0
	f.svc.newCode = func() (string, error) {
		v := values[i%len(values)]
		i++
		return v, nil
	}
}

func TestRequestResetUnknownEmailPersistsNothing(t *testing.T) {
	f := newResetFixture(t)

	err := f.svc.RequestReset(context.Background(), "unknown@x.com")
	require.NoError(t, err)

	assert.Zero(t, f.profiles.setCalls)
	assert.Empty(t, f.emails.codes)
	_, exists := f.profiles.byEmail["unknown@x.com"]
	assert.False(t, exists)
	assert.False(t, f.profiles.stored("user@x.com").HasPendingCode())
}

func TestRequestResetStoresAndSendsCode(t *testing.T) {
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(context.Background(), "  User@X.com "))

	stored := f.profiles.stored("user@x.com")
	require.True(t, stored.HasPendingCode())
	assert.Len(t, *stored.ResetCode, 6)
	assert.Regexp(t, `^\d{6}$`, *stored.ResetCode)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), *stored.ResetCodeExpires)

	require.Len(t, f.emails.codes, 1)
	sent := f.emails.codes[0]
	assert.Equal(t, "user@x.com", sent.To)
	assert.Equal(t, "Ana Pérez", sent.Name)
	assert.Equal(t, *stored.ResetCode, sent.Code)
	assert.Equal(t, 10*time.Minute, sent.TTL)
}

func TestRequestResetEmailRequired(t *testing.T) {
	f := newResetFixture(t)
	assert.ErrorIs(t, f.svc.RequestReset(context.Background(), "   "), ErrEmailRequired)
}

func TestRequestResetStorageFailures(t *testing.T) {
	f := newResetFixture(t)
	f.profiles.getErr = errors.New("db down")
	err := f.svc.RequestReset(context.Background(), "user@x.com")
	assert.ErrorIs(t, err, ErrStorage)

	f = newResetFixture(t)
	f.profiles.setErr = errors.New("db down")
	err = f.svc.RequestReset(context.Background(), "user@x.com")
	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, f.emails.codes)
}

func TestRequestResetDeliveryFailureKeepsCodeAndAlerts(t *testing.T) {
	f := newResetFixture(t)
	f.codes("424242")
	f.emails.err = errors.New("smtp refused")

	err := f.svc.RequestReset(context.Background(), "user@x.com")
	require.ErrorIs(t, err, ErrDelivery)
	assert.NotErrorIs(t, err, ErrStorage)

	stored := f.profiles.stored("user@x.com")
	require.True(t, stored.HasPendingCode())
	assert.Equal(t, "424242", *stored.ResetCode)
	require.Len(t, f.alerts.texts, 1)
	assert.Contains(t, f.alerts.texts[0], "user@x.com")
	assert.NotContains(t, f.alerts.texts[0], "424242")
}

func TestVerifySucceedsIffCodeMatchesAndNotExpired(t *testing.T) {
	cases := []struct {
		name    string
		submit  string
		advance time.Duration
		want    error
	}{
		{"fresh match", "123456", 0, nil},
		{"match at expiry instant", "123456", 10 * time.Minute, nil},
		{"match after expiry", "123456", 10*time.Minute + time.Second, ErrCodeExpired},
		{"mismatch", "654321", 0, ErrCodeIncorrect},
		{"mismatch after expiry", "654321", time.Hour, ErrCodeIncorrect},
		{"prefix only", "12345", 0, ErrCodeIncorrect},
		{"leading space", " 123456", 0, ErrCodeIncorrect},
		{"trailing newline", "123456\n", 0, ErrCodeIncorrect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newResetFixture(t)
			f.codes("123456")
			require.NoError(t, f.svc.RequestReset(context.Background(), "user@x.com"))
			f.clock.Advance(tc.advance)

			err := f.svc.VerifyCode(context.Background(), "user@x.com", tc.submit)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
			// verify never consumes the code
			assert.True(t, f.profiles.stored("user@x.com").HasPendingCode())
		})
	}
}

func TestVerifyErrors(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "", "123456"), ErrCodeRequired)
	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@x.com", ""), ErrCodeRequired)
	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "nobody@x.com", "123456"), ErrAccountNotFound)
	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@x.com", "123456"), ErrNoActiveCode)

	f.profiles.getErr = errors.New("db down")
	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@x.com", "123456"), ErrStorage)
}

func TestSecondIssueInvalidatesFirstCode(t *testing.T) {
	f := newResetFixture(t)
	f.codes("111111", "222222")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))
	first := f.emails.lastCode()
	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))
	second := f.emails.lastCode()
	require.NotEqual(t, first, second)

	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@x.com", first), ErrCodeIncorrect)
	assert.NoError(t, f.svc.VerifyCode(ctx, "user@x.com", second))
}

func TestResetPasswordRejectsShortPasswordEvenWithValidCode(t *testing.T) {
	f := newResetFixture(t)
	f.codes("123456")
	ctx := context.Background()
	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))

	err := f.svc.ResetPassword(ctx, "user@x.com", "123456", "abc12")
	require.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Contains(t, err.Error(), "6")

	f.identity.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, f.profiles.stored("user@x.com").HasPendingCode())
}

func TestResetPasswordCountsRunes(t *testing.T) {
	f := newResetFixture(t)
	f.codes("123456")
	ctx := context.Background()
	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))
	f.identity.On("UpdatePassword", mock.Anything, f.user.ID, "ñandú1").Return(nil).Once()

	require.NoError(t, f.svc.ResetPassword(ctx, "user@x.com", "123456", "ñandú1"))
	f.identity.AssertExpectations(t)
}

func TestResetPasswordRequiredFields(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "", "123456", "secret1"), ErrFieldsRequired)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "user@x.com", "", "secret1"), ErrFieldsRequired)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "user@x.com", "123456", ""), ErrFieldsRequired)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "nobody@x.com", "123456", "secret1"), ErrAccountNotFound)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "user@x.com", "123456", "secret1"), ErrNoActiveCode)
}

func TestResetPasswordRequiresExactCode(t *testing.T) {
	f := newResetFixture(t)
	f.codes("123456")
	ctx := context.Background()
	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "user@x.com", "123456 ", "secret1"), ErrCodeIncorrect)
	f.identity.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPasswordExpiredAndIncorrect(t *testing.T) {
	f := newResetFixture(t)
	f.codes("123456")
	ctx := context.Background()
	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "user@x.com", "000000", "secret1"), ErrCodeIncorrect)
	f.clock.Advance(11 * time.Minute)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "user@x.com", "123456", "secret1"), ErrCodeExpired)
	f.identity.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPasswordIdentityFailureKeepsCodeForRetry(t *testing.T) {
	f := newResetFixture(t)
	f.codes("123456")
	ctx := context.Background()
	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))

	f.identity.On("UpdatePassword", mock.Anything, f.user.ID, "secret1").Return(errors.New("503")).Once()
	err := f.svc.ResetPassword(ctx, "user@x.com", "123456", "secret1")
	require.ErrorIs(t, err, ErrIdentity)
	assert.True(t, f.profiles.stored("user@x.com").HasPendingCode())

	f.identity.On("UpdatePassword", mock.Anything, f.user.ID, "secret1").Return(nil).Once()
	require.NoError(t, f.svc.ResetPassword(ctx, "user@x.com", "123456", "secret1"))
	assert.False(t, f.profiles.stored("user@x.com").HasPendingCode())
	f.identity.AssertExpectations(t)
}

func TestResetPasswordClearFailureStillSucceeds(t *testing.T) {
	f := newResetFixture(t)
	f.codes("123456")
	ctx := context.Background()
	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))
	f.identity.On("UpdatePassword", mock.Anything, f.user.ID, "secret1").Return(nil)
	f.profiles.clearErr = errors.New("db down")

	require.NoError(t, f.svc.ResetPassword(ctx, "user@x.com", "123456", "secret1"))
	require.Len(t, f.alerts.texts, 1)
	assert.Contains(t, f.alerts.texts[0], "Residual")
}

func TestUsedCodeCannotBeReused(t *testing.T) {
	f := newResetFixture(t)
	f.codes("123456")
	ctx := context.Background()
	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))
	f.identity.On("UpdatePassword", mock.Anything, f.user.ID, mock.Anything).Return(nil).Once()

	require.NoError(t, f.svc.ResetPassword(ctx, "user@x.com", "123456", "secret1"))
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "user@x.com", "123456", "secret2"), ErrNoActiveCode)
	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@x.com", "123456"), ErrNoActiveCode)
	f.identity.AssertNumberOfCalls(t, "UpdatePassword", 1)
}

func TestScenarioIssueVerifyUpdate(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))
	c1 := f.emails.lastCode()
	require.Len(t, c1, 6)

	f.clock.Advance(9 * time.Minute)
	require.NoError(t, f.svc.VerifyCode(ctx, "user@x.com", c1))

	f.identity.On("UpdatePassword", mock.Anything, f.user.ID, "secret1").Return(nil).Once()
	require.NoError(t, f.svc.ResetPassword(ctx, "user@x.com", c1, "secret1"))
	assert.False(t, f.profiles.stored("user@x.com").HasPendingCode())

	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@x.com", c1), ErrNoActiveCode)
	f.identity.AssertExpectations(t)
}

func TestScenarioIssueThenExpire(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))
	f.clock.Advance(10*time.Minute + time.Millisecond)

	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@x.com", f.emails.lastCode()), ErrCodeExpired)
}

func TestIssuedCodesAreSixDigits(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		require.NoError(t, f.svc.RequestReset(ctx, "user@x.com"))
		code := f.emails.lastCode()
		require.Len(t, code, 6, fmt.Sprintf("iteration %d", i))
		assert.Regexp(t, `^\d{6}$`, code)
	}
}

func TestNewPasswordResetServiceDefaults(t *testing.T) {
	svc := NewPasswordResetService(newFakeProfiles(), &recordingEmails{}, &mockIdentity{}, nil, zap.NewNop(), ResetOptions{}).(*passwordResetService)
	assert.Equal(t, 10*time.Minute, svc.codeTTL)
	assert.Equal(t, 6, svc.minPasswordLength)
	assert.IsType(t, NopAlertService{}, svc.alerts)
}
