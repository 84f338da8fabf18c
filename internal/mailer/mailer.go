// Package mailer provides email delivery transports. Two implementations
// exist, a provider web API client and plain SMTP, composed behind a
// fallback-on-failure mailer constructed once at startup and injected into
// consumers.
package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/project-tracker/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Disabled is a no-op mailer used when no transport is configured.
type Disabled struct{}

// Send drops the message.
func (Disabled) Send(context.Context, Message) error { return nil }

// NewFromConfig builds the mailer stack from configuration: web API primary
// with SMTP fallback when both are configured, either alone otherwise, and a
// disabled mailer when neither is.
func NewFromConfig(cfg config.MailerConfig, logger *zap.Logger) Mailer {
	var webAPI, smtp Mailer
	if cfg.WebAPIEndpoint != "" {
		webAPI = NewWebAPIMailer(cfg)
	}
	if cfg.SMTPHost != "" {
		smtp = NewSMTPMailer(cfg)
	}

	switch {
	case webAPI != nil && smtp != nil:
		return NewFallbackMailer(webAPI, smtp, logger)
	case webAPI != nil:
		return webAPI
	case smtp != nil:
		return smtp
	default:
		logger.Warn("no mail transport configured; email delivery disabled")
		return Disabled{}
	}
}
