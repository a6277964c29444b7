// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package transition

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/stellarcyber/support-tools/pkg/adapters"
	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// RetryConfig bounds the retry behavior for throttled provider calls.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// InitialBackoff seeds the exponential backoff.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff before jitter.
	MaxBackoff time.Duration
}

const (
	defaultMaxAttempts    = 5
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second
)

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	return c
}

// withRetry runs op, retrying only tiering.ErrThrottled with exponential
// backoff plus full jitter. Any other error, including context
// cancellation, returns immediately.
func withRetry(ctx context.Context, cfg RetryConfig, logger adapters.Logger, key string, op func() error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, tiering.ErrThrottled) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		backoff := jitteredBackoff(attempt, cfg.InitialBackoff, cfg.MaxBackoff)
		logger.Debug(ctx, "throttled, backing off",
			adapters.Field{Key: "key", Value: key},
			adapters.Field{Key: "attempt", Value: attempt + 1},
			adapters.Field{Key: "backoff", Value: backoff.String()})

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(backoff):
		}
	}
	return lastErr
}

func jitteredBackoff(attempt int, initial, max time.Duration) time.Duration {
	backoff := float64(initial) * math.Pow(2, float64(attempt))
	if backoff > float64(max) {
		backoff = float64(max)
	}
	return time.Duration(rand.Float64() * backoff)
}
