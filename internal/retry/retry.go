// Package retry implements bounded exponential backoff with jitter for
// provider calls. Rate limit errors carrying a retry-after hint wait at
// least that long before the next attempt.
package retry

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/docsense-ai/docsense/internal/domain"
)

// Config controls retry behavior.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

// DefaultConfig mirrors the provider limits this service is tuned for:
// up to five attempts, delays doubling from 2s and capped at 60s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    5,
		InitialDelay:   2 * time.Second,
		MaxDelay:       60 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.25,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 2 * time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 60 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	return c
}

// Do runs operation until it succeeds, fails with a non-retryable error, or
// exhausts the attempt budget. Retryability is decided by the domain error
// taxonomy: rate limit and transient failures retry, everything else stops
// immediately.
func Do(ctx context.Context, cfg Config, operation func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !domain.IsRetryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := addJitter(delay, cfg.JitterFraction)
		if after, ok := domain.IsRateLimit(err); ok && after > wait {
			wait = after
		}

		log.Printf("retry: attempt %d/%d failed, waiting %s: %v", attempt, cfg.MaxAttempts, wait, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(math.Min(float64(cfg.MaxDelay), float64(delay)*cfg.Multiplier))
	}

	return lastErr
}

// DoWithResult is Do for operations that return a value.
func DoWithResult[T any](ctx context.Context, cfg Config, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func(ctx context.Context) error {
		var err error
		result, err = operation(ctx)
		return err
	})
	return result, err
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	jitter := float64(d) * fraction * (2*rand.Float64() - 1)
	out := time.Duration(float64(d) + jitter)
	if out < 0 {
		return 0
	}
	return out
}
