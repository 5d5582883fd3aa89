package billing

import (
	"errors"
	"sync"
	"time"

	"storefront/internal/pkg/clock"
)

// ErrBreakerOpen is returned without touching the network while the provider
// is considered degraded.
var ErrBreakerOpen = errors.New("billing: circuit breaker open")

// Breaker opens after a run of consecutive transient failures and refuses new
// provider calls until the cool-down elapses. Terminal validation errors do
// not trip it; they say nothing about provider health.
type Breaker struct {
	mu          sync.Mutex
	threshold   int
	cooldown    time.Duration
	clock       clock.Clock
	consecutive int
	openedAt    time.Time
	open        bool
}

func NewBreaker(threshold int, cooldown time.Duration, clk clock.Clock) *Breaker {
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		clock:     clk,
	}
}

func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}
	if b.clock.Now().Sub(b.openedAt) >= b.cooldown {
		// Half-open: let one call through and re-open on failure.
		b.open = false
		b.consecutive = b.threshold - 1
		return nil
	}
	return ErrBreakerOpen
}

func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil || !isRetryable(err) {
		b.consecutive = 0
		return
	}

	b.consecutive++
	if b.consecutive >= b.threshold {
		b.open = true
		b.openedAt = b.clock.Now()
	}
}
