package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginThrottle counts failed login attempts per email in Redis and blocks
// further attempts once the limit is reached inside the window. A missing or
// unreachable Redis degrades to allowing the attempt.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginThrottle constructs the throttle.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window, logger: logger}
}

func throttleKey(email string) string {
	return fmt.Sprintf("login_attempts:%s", email)
}

// Allow reports whether another login attempt is permitted for the email.
func (t *LoginThrottle) Allow(ctx context.Context, email string) bool {
	if t == nil || t.client == nil {
		return true
	}
	count, err := t.client.Get(ctx, throttleKey(email)).Int()
	if err != nil && err != redis.Nil {
		t.logger.Warn("login throttle unavailable", zap.Error(err))
		return true
	}
	return count < t.maxAttempts
}

// RecordFailure increments the failed-attempt counter for the email.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) {
	if t == nil || t.client == nil {
		return
	}
	key := throttleKey(email)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("login throttle record failed", zap.Error(err))
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if t == nil || t.client == nil {
		return
	}
	if err := t.client.Del(ctx, throttleKey(email)).Err(); err != nil {
		t.logger.Warn("login throttle reset failed", zap.Error(err))
	}
}
