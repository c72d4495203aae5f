// Package resilience wraps the outbound dependencies that can flake:
// retry with backoff for the database coming up, a circuit breaker and
// a bulkhead for the SMTP relay.
package resilience

import (
	"context"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// Defaults applied where a Config or constructor argument leaves a
// value unset.
const (
	DefaultMaxBackoff     = 30 * time.Second
	DefaultMaxConcurrency = 4
)

// Circuit breaker tuning. The breaker trips once enough requests in a
// window fail, fails fast while open, and probes with a few requests
// when half-open.
const (
	breakerMinRequests  = 5
	breakerFailureRatio = 0.6
	breakerHalfOpenMax  = 3
	breakerInterval     = 30 * time.Second
	breakerOpenTimeout  = 10 * time.Second
)

// Config holds retry parameters.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential growth; zero means DefaultMaxBackoff.
	MaxBackoff time.Duration
}

// RetryWithBackoff runs fn up to MaxRetries+1 times, doubling the wait
// after each failure with jitter, capped at MaxBackoff. Context
// cancellation wins over the remaining attempts.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	maxBackoff := cfg.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = DefaultMaxBackoff
	}

	backoff := cfg.InitialBackoff
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := backoff
		if half := int64(wait / 2); half > 0 {
			wait += time.Duration(rand.Int63n(half))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return lastErr
}

// NewCircuitBreaker creates a breaker with the package's tuning.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerHalfOpenMax,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breakerMinRequests && ratio >= breakerFailureRatio
		},
	})
}

// Bulkhead caps concurrent use of a resource.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead admitting up to maxConcurrency callers
// at once; values below 1 fall back to DefaultMaxConcurrency.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency < 1 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency)}
}

// Acquire blocks until a slot frees or the context ends.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (b *Bulkhead) Release() {
	<-b.sem
}
