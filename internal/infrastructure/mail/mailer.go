package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/infrastructure/config"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPMailer sends transactional mail over SMTP
type SMTPMailer struct {
	client     *gomail.Client
	from       string
	userDomain string
	logger     *zap.Logger
}

// NewSMTPMailer builds a mailer from the application config
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPMailer{
		client:     client,
		from:       cfg.From,
		userDomain: cfg.UserDomain,
		logger:     logger,
	}, nil
}

// Send delivers a plain-text message. A bare user ID as recipient is
// qualified with the configured user domain.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(m.qualify(to)); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Debug("mail sent", zap.String("subject", subject))
	return nil
}

func (m *SMTPMailer) qualify(to string) string {
	if strings.Contains(to, "@") || m.userDomain == "" {
		return to
	}
	return to + "@" + m.userDomain
}

// NopMailer discards mail. Used when no SMTP host is configured.
type NopMailer struct{}

// Send does nothing
func (NopMailer) Send(ctx context.Context, to, subject, body string) error {
	return nil
}

var (
	_ shared.Mailer = (*SMTPMailer)(nil)
	_ shared.Mailer = NopMailer{}
)
