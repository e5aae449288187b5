// Package mail sends notification emails through SMTP, SendGrid or the log.
package mail

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"eventtix/registrar/internal/config"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
	// Inline attachments are referenced from the HTML body as cid:<Filename>.
	Inline bool
}

type Message struct {
	To          string
	ToName      string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

func (m Message) validate() error {
	to := strings.TrimSpace(m.To)
	if to == "" {
		return fmt.Errorf("recipient email is required")
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	return nil
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer selected by cfg.Backend.
func New(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Backend {
	case "", "log":
		return NewLogMailer(logger), nil
	case "smtp":
		return NewSMTPMailer(cfg.SMTP, cfg.FromEmail, cfg.FromName)
	case "sendgrid":
		return NewSendGridMailer(cfg.SendGrid.APIKey, cfg.FromEmail, cfg.FromName)
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}
}

func validateSender(fromEmail string) error {
	if strings.TrimSpace(fromEmail) == "" {
		return fmt.Errorf("mail from_email is required")
	}
	if _, err := mail.ParseAddress(fromEmail); err != nil {
		return fmt.Errorf("invalid mail from_email: %w", err)
	}
	return nil
}
