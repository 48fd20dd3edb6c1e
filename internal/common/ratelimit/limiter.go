package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out tokens per key.
type Limiter struct {
	mu       sync.Mutex
	config   Config
	limiters map[string]*limiterEntry
	now      func() time.Time

	lastCleanup time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// New creates a limiter for config.
func New(config Config) (*Limiter, error) {
	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Limiter{
		config:      config,
		limiters:    make(map[string]*limiterEntry),
		now:         time.Now,
		lastCleanup: time.Now(),
	}, nil
}

// Config returns the effective configuration.
func (rl *Limiter) Config() Config {
	return rl.config
}

// Allow reports whether a request for key may proceed now.
func (rl *Limiter) Allow(key string) bool {
	if !rl.config.Enabled() {
		return true
	}
	return rl.limiterForKey(key).AllowN(rl.now(), 1)
}

// Keys returns the number of keys currently tracked.
func (rl *Limiter) Keys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *Limiter) limiterForKey(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > rl.config.CleanupPeriod {
		rl.cleanup(now)
	}

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize),
		}
		rl.limiters[key] = entry
		if len(rl.limiters) > rl.config.MaxKeys {
			rl.cleanup(now)
		}
	}
	entry.lastUsed = now
	return entry.limiter
}

// cleanup removes limiters that haven't been used for a cleanup period
func (rl *Limiter) cleanup(now time.Time) {
	cutoff := now.Add(-rl.config.CleanupPeriod)
	for key, entry := range rl.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
	rl.lastCleanup = now
}
