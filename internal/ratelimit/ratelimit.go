// Package ratelimit provides a keyed token bucket limiter used to protect the
// analyze endpoint, which spends OCR time and model tokens on every call.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages one independent token bucket per key.
// Buckets idle for longer than the idle TTL are evicted in the background.
type KeyedRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a keyed limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	return newLimiter(rate.Limit(rps), burst, 10*time.Minute, time.Now, true)
}

// PerMinute converts "n requests per minute" into a limiter with a burst of n.
// A non-positive n disables limiting: every call is allowed.
func PerMinute(n int) *KeyedRateLimiter {
	if n <= 0 {
		return newLimiter(rate.Inf, 0, 10*time.Minute, time.Now, true)
	}
	return New(float64(n)/60, n)
}

func newLimiter(limit rate.Limit, burst int, idleTTL time.Duration, now func() time.Time, background bool) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		limiters: make(map[string]*entry),
		limit:    limit,
		burst:    burst,
		idleTTL:  idleTTL,
		now:      now,
		done:     make(chan struct{}),
	}
	if background {
		go krl.cleanup(idleTTL)
	}
	return krl
}

// Allow reports whether a request for key may proceed now. It never blocks.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// Wait blocks until a request for key is allowed or ctx is done.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.RLock()
	defer krl.mu.RUnlock()
	return len(krl.limiters)
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	now := krl.now()

	krl.mu.RLock()
	e, exists := krl.limiters[key]
	krl.mu.RUnlock()
	if exists {
		krl.mu.Lock()
		e.lastSeen = now
		krl.mu.Unlock()
		return e.limiter
	}

	krl.mu.Lock()
	defer krl.mu.Unlock()

	// Double-check after acquiring write lock
	if e, exists = krl.limiters[key]; exists {
		e.lastSeen = now
		return e.limiter
	}
	e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst), lastSeen: now}
	krl.limiters[key] = e
	return e.limiter
}

// Evict drops buckets that have not been used for longer than the idle TTL and
// returns how many were removed.
func (krl *KeyedRateLimiter) Evict() int {
	cutoff := krl.now().Add(-krl.idleTTL)
	krl.mu.Lock()
	defer krl.mu.Unlock()
	n := 0
	for k, e := range krl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(krl.limiters, k)
			n++
		}
	}
	return n
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

func (krl *KeyedRateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.Evict()
		}
	}
}
