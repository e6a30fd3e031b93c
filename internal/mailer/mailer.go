// Package mailer sends the application's outgoing email.
package mailer

import (
	"context"
	"fmt"

	"faithledger/internal/config"
	"faithledger/internal/logger"

	"github.com/wneessen/go-mail"
)

// Sender delivers a plain-text message to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP sender when SMTP_HOST is configured, otherwise a
// sender that only logs the message.
func New(cfg *config.Config) Sender {
	if cfg.SMTPHost == "" {
		return LogSender{}
	}
	return &SMTPSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.DefaultFromEmail,
	}
}

// SMTPSender delivers mail through an SMTP relay, upgrading to TLS when the
// server offers it.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s *SMTPSender) buildMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.From); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", s.From, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (s *SMTPSender) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.Username),
			mail.WithPassword(s.Password),
		)
	}
	return mail.NewClient(s.Host, opts...)
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg, err := s.buildMessage(to, subject, body)
	if err != nil {
		return err
	}

	client, err := s.client()
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", s.Host, err)
	}

	logger.Named("mailer").Infow("Email sent", "to", to, "subject", subject)
	return nil
}

// LogSender writes messages to the log instead of sending them. It is used
// in development when no SMTP relay is configured.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, to, subject, body string) error {
	logger.Named("mailer").Infow("Email not sent, SMTP is not configured",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
