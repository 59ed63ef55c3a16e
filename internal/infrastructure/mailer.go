package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	gomail "gopkg.in/mail.v2"

	"account-service/internal/config"
)

// NewMailer builds the mailer selected by cfg.Provider. The configured mail
// account is always the sender.
func NewMailer(cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "", "smtp":
		return NewSMTPMailer(cfg), nil
	case "sendgrid":
		return NewSendGridMailer(cfg.APIKey, cfg.SMTPEmail, logger), nil
	case "resend":
		return NewResendMailer(cfg.APIKey, cfg.SMTPEmail, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// SMTPMailer authenticates with an account address and app password.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPAppPassword)
	dialer.Timeout = cfg.Timeout
	return &SMTPMailer{from: cfg.SMTPEmail, dialer: dialer}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", msg.Body)

	return m.dialer.DialAndSend(message)
}

type SendGridMailer struct {
	from   string
	client *sendgrid.Client
	logger *slog.Logger
}

func NewSendGridMailer(apiKey, from string, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{
		from:   from,
		client: sendgrid.NewSendClient(apiKey),
		logger: logger,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("", m.from),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Body,
		"",
	)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", response.StatusCode, response.Body)
	}

	m.logger.Debug("email sent", "provider", "sendgrid", "status", response.StatusCode)
	return nil
}

type ResendMailer struct {
	from   string
	client *resend.Client
	logger *slog.Logger
}

func NewResendMailer(apiKey, from string, logger *slog.Logger) *ResendMailer {
	return &ResendMailer{
		from:   from,
		client: resend.NewClient(apiKey),
		logger: logger,
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	}

	response, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return err
	}

	m.logger.Debug("email sent", "provider", "resend", "id", response.Id)
	return nil
}
