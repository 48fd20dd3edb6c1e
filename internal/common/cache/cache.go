package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache defines the interface for cache operations
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
}

// Config holds cache configuration
type Config struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval,omitempty"`
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		TTL:             5 * time.Minute,
		CleanupInterval: 10 * time.Minute,
	}
}

// LocalCache wraps patrickmn/go-cache for in-memory caching
type LocalCache struct {
	cache *gocache.Cache
}

// NewLocalCache creates a new local cache instance
func NewLocalCache(config Config) *LocalCache {
	if config.TTL <= 0 {
		config.TTL = DefaultConfig().TTL
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}
	return &LocalCache{
		cache: gocache.New(config.TTL, config.CleanupInterval),
	}
}

// Get retrieves a value from the local cache
func (l *LocalCache) Get(key string) (interface{}, bool) {
	return l.cache.Get(key)
}

// Set stores a value; a zero ttl uses the default TTL.
func (l *LocalCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	l.cache.Set(key, value, ttl)
}

// Delete removes a value from the local cache
func (l *LocalCache) Delete(key string) {
	l.cache.Delete(key)
}

// Clear removes all items from the local cache
func (l *LocalCache) Clear() {
	l.cache.Flush()
}

// Len returns the number of cached items, expired ones included until cleanup.
func (l *LocalCache) Len() int {
	return l.cache.ItemCount()
}

var _ Cache = (*LocalCache)(nil)
