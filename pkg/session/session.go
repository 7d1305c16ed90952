// Package session holds per-provider state that scraper call sites need
// across requests (a cached API origin, an auth token). State lives in an
// explicit object passed into calls, never in package-level globals.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RefreshFunc fetches a fresh value for the session, e.g. by scraping a
// provider's landing page for its current API origin.
type RefreshFunc func(ctx context.Context) (string, error)

// Value is a lazily fetched, expiring provider value. The zero value is
// unusable; construct with New.
type Value struct {
	mu        sync.Mutex
	refresh   RefreshFunc
	ttl       time.Duration
	value     string
	fetchedAt time.Time
	now       func() time.Time
}

// New creates a session value refreshed at most every ttl. A ttl of zero
// means the value never goes stale once fetched.
func New(ttl time.Duration, refresh RefreshFunc) *Value {
	return &Value{
		refresh: refresh,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value, refreshing it first if absent or stale.
// Concurrent callers share one refresh.
func (v *Value) Get(ctx context.Context) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.value != "" && !v.stale() {
		return v.value, nil
	}

	fresh, err := v.refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("refresh session value: %w", err)
	}
	v.value = fresh
	v.fetchedAt = v.now()
	return fresh, nil
}

// Invalidate drops the cached value so the next Get refreshes, used after
// a provider rejects the current token.
func (v *Value) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = ""
}

func (v *Value) stale() bool {
	if v.ttl <= 0 {
		return false
	}
	return v.now().Sub(v.fetchedAt) > v.ttl
}
