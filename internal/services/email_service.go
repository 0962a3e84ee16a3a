package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"artemis/internal/utils"
)

type EmailService interface {
	SendPasswordResetCode(ctx context.Context, to, name, code string, ttl time.Duration) error
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

const (
	resetCodeSubject = "Código de Recuperación de Contraseña"
	welcomeSubject   = "Bienvenido a Artemis"
)

func resetCodeBody(name, code string, ttl time.Duration) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #2E3B82;">Recuperación de Contraseña</h2>
			<p>Hola %s,</p>
			<p>Recibimos una solicitud para restablecer tu contraseña. Usa el siguiente código de 6 dígitos:</p>
			<div style="background-color: #F3F4F6; padding: 20px; text-align: center; margin: 20px 0; border-radius: 8px;">
				<h1 style="color: #2E3B82; font-size: 32px; letter-spacing: 8px; margin: 0;">%s</h1>
			</div>
			<p><strong>Este código expirará en %d minutos.</strong></p>
			<p>Si no solicitaste este código, puedes ignorar este correo de forma segura.</p>
			<hr style="border: none; border-top: 1px solid #E5E7EB; margin: 30px 0;">
			<p style="color: #6B7280; font-size: 12px;">Este es un correo automático, por favor no respondas.</p>
		</div>
	`, html.EscapeString(name), html.EscapeString(code), int(ttl.Minutes()))
}

func welcomeBody(name string) string {
	return fmt.Sprintf(`
		<h2>¡Bienvenido a Artemis, %s!</h2>
		<p>Tu cuenta fue creada correctamente.</p>
		<p>Ya puedes iniciar sesión y completar el formulario de caracterización de tu institución.</p>
	`, html.EscapeString(name))
}

// mailDialer is the part of *gomail.Dialer the SMTP service uses.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpEmailService struct {
	dialer mailDialer
	from   string
}

func NewSMTPEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	return &smtpEmailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

func (s *smtpEmailService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *smtpEmailService) SendPasswordResetCode(ctx context.Context, to, name, code string, ttl time.Duration) error {
	if err := s.send(ctx, to, resetCodeSubject, resetCodeBody(name, code, ttl)); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (s *smtpEmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	if err := s.send(ctx, to, welcomeSubject, welcomeBody(name)); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

type resendEmailService struct {
	client *utils.ResendClient
	log    *zap.Logger
}

func NewResendEmailService(client *utils.ResendClient, log *zap.Logger) EmailService {
	return &resendEmailService{client: client, log: log.Named("email")}
}

func (s *resendEmailService) SendPasswordResetCode(ctx context.Context, to, name, code string, ttl time.Duration) error {
	resp, err := s.client.Send(ctx, to, resetCodeSubject, resetCodeBody(name, code, ttl))
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	s.log.Info("[email][reset] sent", zap.String("to", to), zap.String("id", resp.ID))
	return nil
}

func (s *resendEmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	resp, err := s.client.Send(ctx, to, welcomeSubject, welcomeBody(name))
	if err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	s.log.Info("[email][welcome] sent", zap.String("to", to), zap.String("id", resp.ID))
	return nil
}

// logEmailService only logs; for local development. The code is never logged.
type logEmailService struct {
	log *zap.Logger
}

func NewLogEmailService(log *zap.Logger) EmailService {
	return &logEmailService{log: log.Named("email")}
}

func (s *logEmailService) SendPasswordResetCode(_ context.Context, to, _, code string, ttl time.Duration) error {
	s.log.Info("[email][dry-run] password reset code",
		zap.String("to", to), zap.Int("code_len", len(code)), zap.Duration("ttl", ttl))
	return nil
}

func (s *logEmailService) SendWelcomeEmail(_ context.Context, to, _ string) error {
	s.log.Info("[email][dry-run] welcome", zap.String("to", to))
	return nil
}
