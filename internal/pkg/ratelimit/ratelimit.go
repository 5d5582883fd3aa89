package ratelimit

import (
	"sync"
	"time"

	"storefront/internal/pkg/clock"
)

// Class identifies the operation family a request belongs to. Each class
// carries its own ceiling within the shared window.
type Class string

const (
	ClassCartOps      Class = "cart"
	ClassCheckoutOps  Class = "checkout"
	ClassCatalogReads Class = "catalog"
	ClassAuthOps      Class = "auth"
	ClassWebhookOps   Class = "webhook"
)

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
}

type record struct {
	timestamps []time.Time
}

// Limiter is a sliding-window admission counter keyed by (class, identity).
// It holds no business state and is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	window   time.Duration
	ceilings map[Class]int
	records  map[string]*record
	clock    clock.Clock
}

func NewLimiter(window time.Duration, ceilings map[Class]int, clk clock.Clock) *Limiter {
	return &Limiter{
		window:   window,
		ceilings: ceilings,
		records:  map[string]*record{},
		clock:    clk,
	}
}

// Allow checks the trailing window for (class, identity) and records the
// request when admitted. An unknown class is never limited.
func (l *Limiter) Allow(class Class, identity string) Decision {
	ceiling, ok := l.ceilings[class]
	if !ok || ceiling <= 0 {
		return Decision{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	key := string(class) + ":" + identity

	rec, ok := l.records[key]
	if !ok {
		rec = &record{}
		l.records[key] = rec
	}
	rec.trim(now.Add(-l.window))

	if len(rec.timestamps) >= ceiling {
		oldest := rec.timestamps[0]
		return Decision{
			Allowed:    false,
			RetryAfter: oldest.Add(l.window).Sub(now),
		}
	}

	rec.timestamps = append(rec.timestamps, now)
	return Decision{Allowed: true, Remaining: ceiling - len(rec.timestamps)}
}

// Sweep drops records whose every timestamp has left the window. Intended to
// be called periodically; Allow stays correct without it.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.clock.Now().Add(-l.window)
	removed := 0
	for key, rec := range l.records {
		rec.trim(cutoff)
		if len(rec.timestamps) == 0 {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

func (r *record) trim(cutoff time.Time) {
	i := 0
	for i < len(r.timestamps) && !r.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.timestamps = append(r.timestamps[:0], r.timestamps[i:]...)
	}
}
