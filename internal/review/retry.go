package review

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/ebert/internal/providers"
)

const (
	// DefaultMaxRetries is the number of retry attempts after the first
	// failed provider call.
	DefaultMaxRetries = 3
	// DefaultBackoff is the delay before the first retry; it doubles on
	// each subsequent attempt.
	DefaultBackoff = time.Second
)

// withRetry invokes fn, retrying transient provider failures with
// exponential backoff. Fatal errors (auth, malformed response) and context
// cancellation stop immediately. fn runs at most maxRetries+1 times.
func withRetry(ctx context.Context, logger *zap.Logger, maxRetries int, backoff time.Duration, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !providers.IsRetryable(err) || attempt >= maxRetries {
			return err
		}

		delay := backoff << attempt
		logger.Debug("retrying provider call",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
