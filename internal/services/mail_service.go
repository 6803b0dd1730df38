package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/resend/resend-go/v2"
	"github.com/samber/oops"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sendgrid/rest"

	"github.com/example/storefront/internal/config"
)

// Message is a transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer picks the mail provider named by cfg.MailProvider. Without an
// API key for the chosen provider it falls back to a LogMailer.
func NewMailer(cfg *config.Config, logger *slog.Logger) Mailer {
	switch cfg.MailProvider {
	case "sendgrid":
		if cfg.SendGridAPIKey != "" {
			return NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom)
		}
	case "resend":
		if cfg.ResendAPIKey != "" {
			return NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
		}
	}

	logger.Warn("mail provider not configured, emails will only be logged", "provider", cfg.MailProvider)
	return NewLogMailer(logger)
}

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer sends email through the Resend API.
type ResendMailer struct {
	from   string
	emails resendEmails
}

// NewResendMailer constructs a ResendMailer.
func NewResendMailer(apiKey, from string) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{from: from, emails: client.Emails}
}

// Send implements Mailer.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	resp, err := m.emails.SendWithContext(ctx, params)
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("provider", "resend").Wrap(err)
	}

	slog.DebugContext(ctx, "email sent", "provider", "resend", "id", resp.Id)
	return nil
}

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer sends email through the SendGrid v3 API.
type SendGridMailer struct {
	from   *sgmail.Email
	client sendgridClient
}

// NewSendGridMailer constructs a SendGridMailer. from may be a bare address
// or "Name <address>".
func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{from: parseSender(from), client: sendgrid.NewSendClient(apiKey)}
}

// Send implements Mailer.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	message := sgmail.NewSingleEmail(m.from, msg.Subject, sgmail.NewEmail("", msg.To), msg.Text, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("provider", "sendgrid").Wrap(err)
	}
	if resp.StatusCode >= 300 {
		return oops.Code("MAIL_SEND_FAILED").
			With("provider", "sendgrid").
			With("status", resp.StatusCode).
			Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

func parseSender(from string) *sgmail.Email {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return sgmail.NewEmail("", from)
	}
	return sgmail.NewEmail(addr.Name, addr.Address)
}

// LogMailer writes emails to the log instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("email has no recipient")
	}
	m.logger.InfoContext(ctx, "email not delivered (log mailer)", "to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return nil
}
