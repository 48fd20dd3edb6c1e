package ratelimit

import (
	"time"

	"card-codec/internal/common/errors"
)

// Config represents rate limiter configuration
type Config struct {
	RequestsPerSecond int           `yaml:"requests_per_second" validate:"min=0"`
	BurstSize         int           `yaml:"burst_size" validate:"min=0"`
	MaxKeys           int           `yaml:"max_keys,omitempty"`
	CleanupPeriod     time.Duration `yaml:"cleanup_period,omitempty"`
}

// Enabled reports whether requests are limited at all.
func (c Config) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// withDefaults fills the zero fields of an enabled configuration.
func (c Config) withDefaults() (Config, error) {
	if c.RequestsPerSecond < 0 || c.BurstSize < 0 {
		return c, errors.ConfigError("rate limit must not be negative").
			WithContext("requests_per_second", c.RequestsPerSecond).
			WithContext("burst_size", c.BurstSize)
	}
	if c.BurstSize == 0 {
		c.BurstSize = c.RequestsPerSecond
	}
	if c.MaxKeys <= 0 {
		c.MaxKeys = 10000
	}
	if c.CleanupPeriod <= 0 {
		c.CleanupPeriod = 5 * time.Minute
	}
	return c, nil
}

// DefaultConfig returns the configuration used by the server: limiting off.
func DefaultConfig() Config {
	return Config{
		MaxKeys:       10000,
		CleanupPeriod: 5 * time.Minute,
	}
}
