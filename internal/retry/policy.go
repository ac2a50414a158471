// Package retry provides the backoff policy used for transient broker
// failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

// Mode selects how the delay grows between attempts.
type Mode string

const (
	ModeFixed       Mode = "fixed"
	ModeLinear      Mode = "linear"
	ModeExponential Mode = "exponential"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       Mode
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // retries after the first failure
}

// DefaultPolicy returns linear backoff from 250ms capped at 5s, two retries.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeLinear, Initial: 250 * time.Millisecond, Max: 5 * time.Second, MaxRetries: 2}
}

// None never retries.
func None() Policy {
	p := DefaultPolicy()
	p.MaxRetries = 0
	return p
}

// NewPolicy builds a policy from raw config fields; zero/invalid values fall back to defaults.
func NewPolicy(mode Mode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case ModeFixed, ModeLinear, ModeExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff delay for the given retry attempt number (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case ModeFixed:
		return p.Initial
	case ModeExponential:
		// Shifting past 30 overflows long before any sane cap.
		if retryCount > 30 {
			return p.Max
		}
		d = p.Initial * (1 << (retryCount - 1))
	default:
		d = time.Duration(retryCount) * p.Initial
	}
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return errors.New("initial must be >0")
	}
	if p.Max <= 0 {
		return errors.New("max must be >0")
	}
	if p.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	return nil
}

// Do runs op until it succeeds, the retries are spent or ctx is done.
// Context errors are never retried. The last error is returned.
func (p Policy) Do(ctx context.Context, name string, op func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := p.Delay(attempt)
			slog.Debug("Retrying operation",
				slog.String("operation", name),
				slog.Int("attempt", attempt),
				logfields.DurationMS(float64(delay.Milliseconds())),
				logfields.Error(err))
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("%s: %w (last error: %w)", name, ctx.Err(), err)
			case <-t.C:
			}
		}

		err = op(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt >= p.MaxRetries {
			return err
		}
	}
}
