// Package ratelimit provides the keyed request limiter consumed by the
// access gates. OTP issuance, OTP verification and token verification each
// carry their own key prefix, so the three budgets are independent.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter grants or denies one request under a keyed windowed budget.
type Limiter interface {
	Allow(key string) bool
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed is a per-key token-bucket limiter with automatic stale-entry cleanup.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
	r       rate.Limit
	burst   int
	done    chan struct{}
}

// NewKeyed creates a keyed limiter: r events/second per key, burst up to
// burst events.
func NewKeyed(r rate.Limit, burst int) *Keyed {
	k := &Keyed{
		entries: make(map[string]*entry),
		r:       r,
		burst:   burst,
		done:    make(chan struct{}),
	}
	go k.cleanup()
	return k
}

// PerMinute creates a keyed limiter allowing n events per minute per key.
func PerMinute(n int) *Keyed {
	return NewKeyed(rate.Every(time.Minute/time.Duration(n)), n)
}

// Allow reports whether one more event may proceed under key's budget.
func (k *Keyed) Allow(key string) bool {
	return k.get(key).Allow()
}

func (k *Keyed) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	if v, ok := k.entries[key]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(k.r, k.burst)
	k.entries[key] = &entry{limiter: l, lastSeen: time.Now()}
	return l
}

// Close stops the cleanup goroutine. The limiter stays usable afterwards;
// stale entries just stop being swept.
func (k *Keyed) Close() {
	close(k.done)
}

// cleanup removes stale entries every 5 minutes until Close is called.
func (k *Keyed) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-k.done:
			return
		case <-ticker.C:
			k.mu.Lock()
			for key, v := range k.entries {
				if time.Since(v.lastSeen) > 10*time.Minute {
					delete(k.entries, key)
				}
			}
			k.mu.Unlock()
		}
	}
}
