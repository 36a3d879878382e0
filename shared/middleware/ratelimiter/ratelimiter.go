// Package ratelimiter keeps one token bucket per identity (an IP, usually).
// Idle buckets are dropped after the expiration time.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter *rate.Limiter
	timer   *time.Timer
}

// KeyedRateLimiter manages a rate.Limiter per identity.
type KeyedRateLimiter struct {
	limiters       map[string]*entry
	mu             sync.Mutex
	limit          rate.Limit
	burst          int
	expirationTime time.Duration
}

// New creates a limiter allowing perSecond events per second with the given burst.
func New(perSecond float64, burst int, expirationTime time.Duration) *KeyedRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &KeyedRateLimiter{
		limiters:       make(map[string]*entry),
		limit:          rate.Limit(perSecond),
		burst:          burst,
		expirationTime: expirationTime,
	}
}

// PerMinute is a convenience constructor for the config's per-minute rates.
func PerMinute(n float64, expirationTime time.Duration) *KeyedRateLimiter {
	burst := int(n)
	return New(n/60, burst, expirationTime)
}

func (kl *KeyedRateLimiter) cleanup(key string, e *entry) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	// a newer entry may have replaced this one
	if current, ok := kl.limiters[key]; ok && current == e {
		delete(kl.limiters, key)
	}
}

func (kl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	e, exists := kl.limiters[key]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.limiters[key] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(kl.expirationTime, func() { kl.cleanup(key, e) })
	return e.limiter
}

// Allow reports whether one more event for key fits the budget now.
func (kl *KeyedRateLimiter) Allow(key string) bool {
	return kl.getLimiter(key).Allow()
}

// Len returns the number of tracked identities.
func (kl *KeyedRateLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.limiters)
}

// Stop cancels every expiration timer.
func (kl *KeyedRateLimiter) Stop() {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	for _, e := range kl.limiters {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
}
