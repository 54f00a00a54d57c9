package mediapager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Retrier runs a remote call, retrying it according to its own policy. The error it
// returns is the one that survived every attempt.
type Retrier interface {
	Do(ctx context.Context, call func(ctx context.Context) error) error
}

// RetrierFunc adapts a function to Retrier.
type RetrierFunc func(ctx context.Context, call func(ctx context.Context) error) error

// Do - implements Retrier.
func (f RetrierFunc) Do(ctx context.Context, call func(ctx context.Context) error) error {
	return f(ctx, call)
}

// NoRetry calls once.
var NoRetry Retrier = RetrierFunc(func(ctx context.Context, call func(ctx context.Context) error) error {
	return call(ctx)
})

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying, e.g. a rejected request.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetryConfig configures BreakerRetrier.
type RetryConfig struct {
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	// TripAfter consecutive failed calls open the breaker.
	TripAfter   uint32        `mapstructure:"trip_after"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		TripAfter:      3,
		OpenTimeout:    30 * time.Second,
	}
}

// BreakerRetrier retries with exponential backoff inside a circuit breaker, so a source
// that keeps failing is short-circuited for OpenTimeout instead of being hammered by
// every pager that drains it.
type BreakerRetrier struct {
	cfg    RetryConfig
	cb     *gobreaker.CircuitBreaker
	logger zerolog.Logger
}

func NewBreakerRetrier(name string, cfg RetryConfig, logger zerolog.Logger) *BreakerRetrier {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.TripAfter == 0 {
		cfg.TripAfter = DefaultRetryConfig().TripAfter
	}

	logger = logger.With().Str("component", "retrier").Str("breaker", name).Logger()

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.TripAfter
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &BreakerRetrier{
		cfg:    cfg,
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
	}
}

// Do - implements Retrier.
func (r *BreakerRetrier) Do(ctx context.Context, call func(ctx context.Context) error) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		backoff := r.cfg.InitialBackoff

		var lastErr error
		for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
			if attempt > 0 {
				r.logger.Debug().Int("attempt", attempt).Int("max_retries", r.cfg.MaxRetries).Err(lastErr).Msg("retrying remote call")

				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}

				backoff *= 2
				if r.cfg.MaxBackoff > 0 && backoff > r.cfg.MaxBackoff {
					backoff = r.cfg.MaxBackoff
				}
			}

			lastErr = call(ctx)
			if lastErr == nil {
				return nil, nil
			}

			if isPermanent(lastErr) {
				return nil, lastErr
			}
		}

		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	})
	if err != nil {
		return fmt.Errorf("remote call failed: %w", err)
	}

	return nil
}

// State exposes the breaker state.
func (r *BreakerRetrier) State() gobreaker.State {
	return r.cb.State()
}

var (
	_ Retrier = (*BreakerRetrier)(nil)
	_ Retrier = RetrierFunc(nil)
)
