package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailSender interface {
	Send(ctx context.Context, to string, subject string, body string) error
	ProviderID() string
}

// SMTPEmail sends email via unauthenticated SMTP (Mailpit-compatible).
type SMTPEmail struct {
	addr string
	from string
}

func NewSMTPEmail(host string, port string, from string) *SMTPEmail {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@apptdesk.local"
	}
	return &SMTPEmail{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
	}
}

func (s *SMTPEmail) ProviderID() string {
	return "smtp"
}

// Send ignores ctx; net/smtp has no context-aware API.
func (s *SMTPEmail) Send(_ context.Context, to string, subject string, body string) error {
	msg := buildMessage(s.from, to, subject, body)
	return smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg))
}

func buildMessage(from, to, subject, body string) string {
	// Minimal RFC 5322 message; enough for Mailpit and most SMTP relays.
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}

// SendGridEmail sends email through the SendGrid v3 API.
type SendGridEmail struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *slog.Logger
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// BaseURL overrides the API host, e.g. for a local mock.
	BaseURL string
}

// NewSendGridEmail returns nil without an API key.
func NewSendGridEmail(cfg SendGridConfig, logger *slog.Logger) *SendGridEmail {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.FromName == "" {
		cfg.FromName = "Apptdesk"
	}
	req := sendgrid.GetRequest(cfg.APIKey, "/v3/mail/send", cfg.BaseURL)
	req.Method = "POST"
	return &SendGridEmail{
		client:    &sendgrid.Client{Request: req},
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridEmail) ProviderID() string {
	return "sendgrid"
}

func (s *SendGridEmail) Send(ctx context.Context, to string, subject string, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body, body)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("notify: sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
