package mediapager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		TripAfter:      2,
		OpenTimeout:    time.Minute,
	}
}

func Test_BreakerRetrier_Do(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		permanent bool
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, false, 1, false},
		{"recovers on last retry", 2, false, 3, false},
		{"exhausts retries", 5, false, 3, true},
		{"permanent error is not retried", 5, true, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewBreakerRetrier(tt.name, fastRetryConfig(), zerolog.Nop())

			calls := 0
			err := r.Do(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					if tt.permanent {
						return Permanent(errBoom)
					}
					return errBoom
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errBoom)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func Test_BreakerRetrier_OpensAfterConsecutiveFailures(t *testing.T) {
	r := NewBreakerRetrier("trip", fastRetryConfig(), zerolog.Nop())
	failing := func(context.Context) error { return errors.New("down") }

	require.Error(t, r.Do(context.Background(), failing))
	require.Error(t, r.Do(context.Background(), failing))
	assert.Equal(t, gobreaker.StateOpen, r.State())

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Zero(t, calls)
}

func Test_BreakerRetrier_StopsOnContextCancel(t *testing.T) {
	cfg := fastRetryConfig()
	cfg.InitialBackoff = time.Hour
	r := NewBreakerRetrier("cancel", cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := r.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func Test_Permanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
