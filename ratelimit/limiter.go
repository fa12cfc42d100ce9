// Package ratelimit enforces a per-client cooldown backed by an external
// key-value store with TTL semantics. The limiter keeps no state of its own.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AnonymousClient is the shared identity of clients without a trusted
// address header. All of them share one bucket.
const AnonymousClient = "anon"

// Store is the key-value contract used for rate limiting.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// AtomicStore can set a key only when it is absent or expired, in one step.
// The limiter prefers it when available.
type AtomicStore interface {
	Store
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (set bool, err error)
}

// Decision is the result of CheckAndRecord.
type Decision struct {
	Allowed bool
	Key     string
}

// Limiter admits one request per client per window.
type Limiter struct {
	store  Store
	window time.Duration
}

// New returns a Limiter with the given cooldown window.
func New(store Store, window time.Duration) *Limiter {
	return &Limiter{store: store, window: window}
}

// Window is the cooldown duration.
func (l *Limiter) Window() time.Duration { return l.window }

// Key is the store key for a client.
func Key(clientID string) string { return "rate:" + clientID }

// CheckAndRecord rejects a client seen within the window, otherwise records
// it. A rejection does not extend the cooldown.
//
// With a plain Store the get and put are separate calls, so two requests of
// the same client arriving at the same instant may both pass.
func (l *Limiter) CheckAndRecord(ctx context.Context, clientID string) (Decision, error) {
	key := Key(clientID)

	if as, ok := l.store.(AtomicStore); ok {
		set, err := as.SetIfAbsent(ctx, key, "1", l.window)
		if err != nil {
			return Decision{Key: key}, fmt.Errorf("rate limit store: %w", err)
		}
		return Decision{Allowed: set, Key: key}, nil
	}

	_, seen, err := l.store.Get(ctx, key)
	if err != nil {
		return Decision{Key: key}, fmt.Errorf("rate limit store get: %w", err)
	}
	if seen {
		return Decision{Key: key}, nil
	}
	if err := l.store.Put(ctx, key, "1", l.window); err != nil {
		return Decision{Key: key}, fmt.Errorf("rate limit store put: %w", err)
	}
	return Decision{Allowed: true, Key: key}, nil
}

// ClientID reads the trusted address header, falling back to
// AnonymousClient.
func ClientID(h http.Header, trustedHeader string) string {
	if trustedHeader != "" {
		if v := strings.TrimSpace(h.Get(trustedHeader)); v != "" {
			return v
		}
	}
	return AnonymousClient
}
