package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"artemis/internal/utils"
)

type fakeDialer struct {
	msgs []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.msgs = append(d.msgs, m...)
	return d.err
}

func TestResetCodeBodyEscapesAndShowsTTL(t *testing.T) {
	body := resetCodeBody("<b>Ana</b>", "012345", 10*time.Minute)
	assert.Contains(t, body, "&lt;b&gt;Ana&lt;/b&gt;")
	assert.Contains(t, body, "012345")
	assert.Contains(t, body, "expirará en 10 minutos")
}

func TestSMTPEmailServiceSendsResetCode(t *testing.T) {
	d := &fakeDialer{}
	s := &smtpEmailService{dialer: d, from: "no-reply@artemis.test"}

	require.NoError(t, s.SendPasswordResetCode(context.Background(), "ana@x.com", "Ana", "123456", 10*time.Minute))
	require.Len(t, d.msgs, 1)
	assert.Equal(t, []string{"ana@x.com"}, d.msgs[0].GetHeader("To"))
	assert.Equal(t, []string{resetCodeSubject}, d.msgs[0].GetHeader("Subject"))
}

func TestSMTPEmailServiceWrapsDialError(t *testing.T) {
	cause := errors.New("connection refused")
	s := &smtpEmailService{dialer: &fakeDialer{err: cause}, from: "a@b.c"}

	err := s.SendWelcomeEmail(context.Background(), "ana@x.com", "Ana")
	require.ErrorIs(t, err, cause)
}

func TestResendEmailServiceFailsOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"statusCode":403,"message":"You can only send testing emails. Please verify a domain"}`))
	}))
	defer srv.Close()

	s := NewResendEmailService(utils.NewResendClient("key", srv.URL, "Artemis <a@b.c>"), zap.NewNop())
	err := s.SendPasswordResetCode(context.Background(), "ana@x.com", "Ana", "123456", 10*time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrHTTPStatus)
}

func TestLogEmailServiceNeverFails(t *testing.T) {
	s := NewLogEmailService(zap.NewNop())
	assert.NoError(t, s.SendPasswordResetCode(context.Background(), "a@b.c", "", "000000", time.Minute))
	assert.NoError(t, s.SendWelcomeEmail(context.Background(), "a@b.c", ""))
}
