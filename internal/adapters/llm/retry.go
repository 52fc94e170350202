package llm

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// RetryConfig controls how many times a request is attempted before the
// first byte of the answer is received. Streams are never retried once
// they have produced output.
type RetryConfig struct {
	MaxAttempts       int
	BackoffBase       time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// DefaultRetryConfig returns the retry policy used by hosted providers.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        10 * time.Second,
	}
}

var (
	errTransient = errors.New("transient provider error")
	errFatal     = errors.New("fatal provider error")
)

func transient(err error) error { return errors.Mark(err, errTransient) }
func fatal(err error) error     { return errors.Mark(err, errFatal) }

// IsTransient reports whether err may succeed on retry.
func IsTransient(err error) bool { return errors.Is(err, errTransient) }

// IsFatal reports whether err must not be retried.
func IsFatal(err error) bool { return errors.Is(err, errFatal) }

// classifyStatus turns a non-2xx response into a transient or fatal error.
func classifyStatus(statusCode int, body []byte) error {
	err := errors.Newf("provider returned status %d: %s", statusCode, truncate(string(body), maxErrorBody))

	switch {
	case statusCode == http.StatusTooManyRequests, statusCode >= 500:
		return transient(err)
	default:
		// 400, 401, 403, 404 and anything unexpected
		return fatal(err)
	}
}

const maxErrorBody = 200

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// withRetry calls do until it succeeds, fails fatally or runs out of attempts.
func withRetry[T any](ctx context.Context, cfg RetryConfig, logger *slog.Logger, do func() (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := do()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if IsFatal(err) || attempt == attempts {
			break
		}

		backoff := cfg.backoff(attempt)
		logger.Debug("provider request failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"backoff", backoff,
			"error", err)

		select {
		case <-ctx.Done():
			return zero, errors.Wrap(ctx.Err(), "waiting to retry")
		case <-time.After(backoff):
		}
	}
	return zero, lastErr
}

// backoff is exponential with +/-25% jitter.
func (c RetryConfig) backoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.BackoffMultiplier
	}

	d := time.Duration(float64(c.BackoffBase) * multiplier)
	if c.MaxBackoff > 0 && d > c.MaxBackoff {
		d = c.MaxBackoff
	}

	jitter := float64(d) * 0.25 * (rand.Float64()*2 - 1)
	return d + time.Duration(jitter)
}
