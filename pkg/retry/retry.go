package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Policy is a bounded retry loop with a fixed delay between attempts.
// Every subsystem that needs a store connection at startup shares this
// policy instead of hand-rolling its own loop.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Logger      *zap.Logger
}

// DefaultPolicy matches the bootstrap defaults: 10 attempts, 5s apart.
func DefaultPolicy(logger *zap.Logger) Policy {
	return Policy{
		MaxAttempts: 10,
		Delay:       5 * time.Second,
		Logger:      logger,
	}
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. Each attempt is logged with its ordinal. The
// terminal error is returned to the caller; Do never panics or exits.
func (p Policy) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if p.Logger != nil {
			p.Logger.Info("attempting operation",
				zap.String("name", name),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts))
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if p.Logger != nil {
			p.Logger.Warn("attempt failed",
				zap.String("name", name),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s aborted: %w", name, ctx.Err())
		case <-time.After(p.Delay):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
