// Package mailer delivers verification codes by e-mail.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"github.com/yukikurage/minitrello-api/internal/config"
	"github.com/yukikurage/minitrello-api/internal/logger"
)

const verificationSubject = "Mini Trello - Verification Code"

// Sender sends a verification code to an address
type Sender interface {
	SendVerificationCode(ctx context.Context, to, code string) error
	// Delivers reports whether the code actually leaves the process
	Delivers() bool
}

// SMTPSender sends through an authenticated SMTP relay
type SMTPSender struct {
	cfg config.EmailConfig
	log *logger.Logger
}

func NewSMTPSender(cfg config.EmailConfig, log *logger.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log.WithComponent("mailer")}
}

func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(verificationSubject)
	msg.SetBodyString(mail.TypeTextHTML, verificationBody(code))

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.log.Infow("Verification code sent", "to", to)
	return nil
}

func (s *SMTPSender) Delivers() bool { return true }

// LogSender writes the code to the log instead of sending it; used when no SMTP credentials are set
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.WithComponent("mailer")}
}

func (s *LogSender) SendVerificationCode(_ context.Context, to, code string) error {
	s.log.Warnw("Email credentials not configured, verification code logged instead", "to", to, "code", code)
	return nil
}

func (s *LogSender) Delivers() bool { return false }

// New picks the SMTP sender when credentials are configured
func New(cfg *config.Config, log *logger.Logger) Sender {
	if cfg.EmailEnabled() {
		return NewSMTPSender(cfg.Email, log)
	}
	return NewLogSender(log)
}

func verificationBody(code string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #0066cc;">Mini Trello Verification Code</h2>
  <p>Your verification code is:</p>
  <div style="background-color: #f4f4f4; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">%s</div>
  <p>This code will expire in 10 minutes.</p>
  <p>If you didn't request this code, please ignore this email.</p>
</div>`, code)
}
