// Package ratelimit implements fixed-window admission control keyed by
// client network address.
package ratelimit

import (
	"context"
	"log"
	"time"
)

// Decision is the outcome of an admission check
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Store accumulates per-key counters inside a fixed window. Incr returns the
// count after this call and the time left until the key's window resets.
// Implementations must serialize increments for the same key.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, reset time.Duration, err error)
}

// Limiter admits requests while a client's count stays at or below the
// ceiling for the active window.
type Limiter struct {
	store    Store
	fallback Store
	ceiling  int
	window   time.Duration
}

// New creates a limiter over the given store. When the store fails at
// runtime (e.g. Redis unreachable), counting degrades to an in-process
// fallback so admission is never skipped.
func New(store Store, ceiling int, window time.Duration) *Limiter {
	if ceiling <= 0 {
		ceiling = 5
	}
	if window <= 0 {
		window = time.Hour
	}
	l := &Limiter{store: store, ceiling: ceiling, window: window}
	if _, ok := store.(*MemoryStore); !ok {
		l.fallback = NewMemoryStore()
	}
	return l
}

// Ceiling returns the configured admissions per window
func (l *Limiter) Ceiling() int { return l.ceiling }

// Window returns the configured window length
func (l *Limiter) Window() time.Duration { return l.window }

// Admit counts one request for key and decides whether it may proceed
func (l *Limiter) Admit(ctx context.Context, key string) Decision {
	count, reset, err := l.store.Incr(ctx, key, l.window)
	if err != nil && l.fallback != nil {
		log.Printf("[ratelimit] store error, using in-memory fallback: %v", err)
		count, reset, err = l.fallback.Incr(ctx, key, l.window)
	}
	if err != nil {
		// Counting is broken entirely; deny expensive work rather than
		// letting conversions bypass the limiter.
		return Decision{Allowed: false, RetryAfter: l.window}
	}

	if count > l.ceiling {
		return Decision{Allowed: false, RetryAfter: reset}
	}
	return Decision{Allowed: true, Remaining: l.ceiling - count}
}
