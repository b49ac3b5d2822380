package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when the retry budget is exhausted before the query
// produced a result.
var ErrTimeout = errors.New("exceeded maximum retries")

// TimeoutError carries the number of queries issued before giving up.
type TimeoutError struct {
	Queries int
	// Deadline is true when the wall-clock deadline, not the attempt count,
	// ended polling.
	Deadline bool
}

func (e *TimeoutError) Error() string {
	if e.Deadline {
		return fmt.Sprintf("%v: deadline reached after %d queries", ErrTimeout, e.Queries)
	}
	return fmt.Sprintf("%v: gave up after %d queries", ErrTimeout, e.Queries)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// Wait describes one pause between two queries.
type Wait struct {
	Attempt   int // 1-based index of the retry about to happen
	Remaining int // retries left after this one
	Interval  time.Duration
}

// Config holds poll configuration.
type Config struct {
	Interval    time.Duration
	MaxAttempts int
	Deadline    time.Duration
	OnWait      func(Wait)
}

// Option is a functional option for poll configuration.
type Option func(*Config)

// DefaultConfig returns the defaults used when no option overrides them.
func DefaultConfig() Config {
	return Config{
		Interval:    2 * time.Second,
		MaxAttempts: 5,
	}
}

// WithInterval sets the pause between queries.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithMaxAttempts sets the number of retries after the initial query.
// A value of N yields at most N+1 queries.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithDeadline bounds polling by wall-clock time in addition to the attempt
// count. Zero disables the deadline.
func WithDeadline(d time.Duration) Option {
	return func(c *Config) {
		c.Deadline = d
	}
}

// WithOnWait registers a callback invoked before every pause.
func WithOnWait(fn func(Wait)) Option {
	return func(c *Config) {
		c.OnWait = fn
	}
}

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// UntilSettled runs query until it returns a non-empty slice and returns the
// first element.
//
// If the slice is still empty after MaxAttempts retries, a *TimeoutError
// wrapping ErrTimeout is returned. A query error stops polling immediately.
// Cancelling ctx stops polling with the context error.
func UntilSettled[T any](ctx context.Context, query func(context.Context) ([]T, error), opts ...Option) (T, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}

	var deadline <-chan time.Time
	if cfg.Deadline > 0 {
		timer := time.NewTimer(cfg.Deadline)
		defer timer.Stop()
		deadline = timer.C
	}

	remaining := cfg.MaxAttempts
	for queries := 1; ; queries++ {
		items, err := query(ctx)
		if err != nil {
			return zero, fmt.Errorf("poll query failed: %w", err)
		}
		if len(items) > 0 {
			return items[0], nil
		}

		if remaining == 0 {
			return zero, &TimeoutError{Queries: queries}
		}
		remaining--

		if cfg.OnWait != nil {
			cfg.OnWait(Wait{
				Attempt:   cfg.MaxAttempts - remaining,
				Remaining: remaining,
				Interval:  cfg.Interval,
			})
		}

		timer := time.NewTimer(cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("poll cancelled after %d queries: %w", queries, ctx.Err())
		case <-deadline:
			timer.Stop()
			return zero, &TimeoutError{Queries: queries, Deadline: true}
		case <-timer.C:
		}
	}
}
