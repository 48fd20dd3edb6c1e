// Package cache provides an in-memory cache with per-item expiry, backed by
// github.com/patrickmn/go-cache.
//
// Usage:
//
//	c := cache.NewLocalCache(cache.DefaultConfig())
//	c.Set("urn:uuid:...", record, 0) // 0 uses the default TTL
//	val, found := c.Get("urn:uuid:...")
//	c.Delete("urn:uuid:...")
//
// A LocalCache is safe for concurrent use.
package cache
