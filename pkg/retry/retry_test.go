package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 10, Delay: time.Millisecond, Logger: zap.NewNop()}

	calls := 0
	err := p.Do(context.Background(), "connect", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRecoversAfterFailures(t *testing.T) {
	p := Policy{MaxAttempts: 5, Delay: time.Millisecond, Logger: zap.NewNop()}

	calls := 0
	err := p.Do(context.Background(), "connect", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	p := Policy{MaxAttempts: 4, Delay: time.Millisecond, Logger: zap.NewNop()}

	cause := errors.New("store unreachable")
	calls := 0
	err := p.Do(context.Background(), "connect", func(ctx context.Context) error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed after 4 attempts")
}

func TestDoStopsOnContextCancel(t *testing.T) {
	p := Policy{MaxAttempts: 10, Delay: time.Hour, Logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, "connect", func(ctx context.Context) error {
		calls++
		return errors.New("not yet")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	p := Policy{Delay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), "connect", func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy(zap.NewNop())
	assert.Equal(t, 10, p.MaxAttempts)
	assert.Equal(t, 5*time.Second, p.Delay)
}
