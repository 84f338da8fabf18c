package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FallbackMailer tries the primary transport and falls back to the secondary
// when the primary fails.
type FallbackMailer struct {
	primary  Mailer
	fallback Mailer
	logger   *zap.Logger
}

// NewFallbackMailer composes two transports.
func NewFallbackMailer(primary, fallback Mailer, logger *zap.Logger) *FallbackMailer {
	return &FallbackMailer{primary: primary, fallback: fallback, logger: logger}
}

// Send attempts primary then fallback delivery.
func (m *FallbackMailer) Send(ctx context.Context, msg Message) error {
	primaryErr := m.primary.Send(ctx, msg)
	if primaryErr == nil {
		return nil
	}
	m.logger.Warn("primary mail transport failed, trying fallback", zap.Error(primaryErr))

	if err := m.fallback.Send(ctx, msg); err != nil {
		return fmt.Errorf("fallback transport failed after primary (%v): %w", primaryErr, err)
	}
	return nil
}
