// Package mail sends contact form notifications over SMTP.
package mail

import (
	"context"
	"fmt"
	"time"

	"folio/internal/config"
	"folio/internal/errors"

	gomail "github.com/wneessen/go-mail"
)

// Message is a single HTML email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through an authenticated SMTP relay
type SMTPSender struct {
	client   *gomail.Client
	from     string
	fromName string
	logger   *errors.Logger
}

// NewSMTPSender builds a sender from cfg; the connection is opened per message
func NewSMTPSender(cfg config.MailConfig, logger *errors.Logger) (*SMTPSender, error) {
	policy, err := tlsPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(policy),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid SMTP configuration", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	logger.Info("SMTP sender configured",
		"host", cfg.Host,
		"port", cfg.Port,
		"tls_policy", cfg.TLSPolicy)

	return &SMTPSender{client: client, from: from, fromName: cfg.FromName, logger: logger}, nil
}

// Send delivers msg, returning a MAIL_FAILED error on any failure
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return mailFailed("invalid sender address", err)
	}
	if err := m.To(msg.To); err != nil {
		return mailFailed("invalid recipient address", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	start := time.Now()
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return mailFailed("failed to send email", err).WithContext("subject", msg.Subject)
	}
	s.logger.Debug("Email sent",
		"subject", msg.Subject,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func tlsPolicy(name string) (gomail.TLSPolicy, error) {
	switch name {
	case "", "mandatory":
		return gomail.TLSMandatory, nil
	case "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "none":
		return gomail.NoTLS, nil
	default:
		return gomail.TLSMandatory, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid mail tlsPolicy: %s", name), nil)
	}
}

func mailFailed(message string, err error) *errors.AppError {
	return errors.NewNetworkError(errors.ErrCodeMailFailed, message, err)
}
