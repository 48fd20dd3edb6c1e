// Package config loads the settings of the card-codec binary.
//
// Values come from built-in defaults, then an optional YAML file, then
// environment variables (a .env file is loaded into the environment by
// main). Later sources win.
//
// Environment Variables:
//
// Codec Settings:
//   - CARD_VERSION: vCard version written by default, "2.1", "3.0" or "4.0" (default: 3.0)
//   - CARD_FOLD_LENGTH: maximum line length in octets, 0 disables folding (default: 75)
//   - CARD_CARET_ENCODING: encode parameter values with RFC 6868 carets (default: false)
//   - CARD_MAX_DEPTH: deepest embedded AGENT record read or written (default: 8)
//   - CARD_PRODID: PRODID added to written records (default: -//card-codec//EN)
//   - CARD_INCLUDE_PRODID: add PRODID to records that carry none (default: true)
//   - CARD_BASE_URL: base URL for relative links in hCard pages
//
// Application Settings:
//   - LOG_LEVEL: logging level (default: info)
//   - ADDRESSBOOK_PATH: SQLite address book file (default: ./addressbook.db)
//   - PORT: HTTP server port (default: 8080)
//   - RATE_LIMIT_RPS: requests per second allowed per client, 0 disables (default: 0)
//   - RATE_LIMIT_BURST: burst allowed per client (default: RATE_LIMIT_RPS)
//   - CACHE_TTL: how long decoded cards stay cached, e.g. "5m"; 0 disables (default: 5m)
package config

import (
	"os"
	"strconv"
	"time"

	"card-codec/internal/common/cache"
	"card-codec/internal/common/errors"
	"card-codec/internal/common/ratelimit"
	"card-codec/internal/common/validation"
	"card-codec/internal/vcard"
	"gopkg.in/yaml.v3"
)

// Config holds all settings of the binary.
type Config struct {
	Port            string           `yaml:"port" validate:"required,numeric"`
	LogLevel        string           `yaml:"log_level" validate:"required"`
	AddressBookPath string           `yaml:"addressbook_path" validate:"required"`
	Card            CardConfig       `yaml:"card"`
	RateLimit       ratelimit.Config `yaml:"rate_limit"`
	Cache           cache.Config     `yaml:"cache"`
}

// CardConfig holds the codec settings shared by every format.
type CardConfig struct {
	Version          string `yaml:"version" validate:"vcard_version"`
	FoldLength       int    `yaml:"fold_length" validate:"omitempty,min=8"`
	CaretEncoding    bool   `yaml:"caret_encoding"`
	MaxDepth         int    `yaml:"max_depth" validate:"min=1,max=64"`
	ProductID        string `yaml:"prodid"`
	IncludeProductID bool   `yaml:"include_prodid"`
	BaseURL          string `yaml:"base_url" validate:"omitempty,url"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		AddressBookPath: "./addressbook.db",
		Card: CardConfig{
			Version:          "3.0",
			FoldLength:       75,
			MaxDepth:         8,
			ProductID:        "-//card-codec//EN",
			IncludeProductID: true,
		},
		RateLimit: ratelimit.DefaultConfig(),
		Cache:     cache.DefaultConfig(),
	}
}

// Load returns the defaults overridden by environment variables.
func Load() *Config {
	cfg := Defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads the YAML file at path over the defaults, then applies
// environment variables. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.ConfigError("reading config file " + path).WithContext("cause", err.Error())
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.ConfigError("parsing config file " + path).WithContext("cause", err.Error())
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.AddressBookPath = getEnv("ADDRESSBOOK_PATH", c.AddressBookPath)

	c.Card.Version = getEnv("CARD_VERSION", c.Card.Version)
	c.Card.FoldLength = getIntEnv("CARD_FOLD_LENGTH", c.Card.FoldLength)
	c.Card.CaretEncoding = getBoolEnv("CARD_CARET_ENCODING", c.Card.CaretEncoding)
	c.Card.MaxDepth = getIntEnv("CARD_MAX_DEPTH", c.Card.MaxDepth)
	c.Card.ProductID = getEnv("CARD_PRODID", c.Card.ProductID)
	c.Card.IncludeProductID = getBoolEnv("CARD_INCLUDE_PRODID", c.Card.IncludeProductID)
	c.Card.BaseURL = getEnv("CARD_BASE_URL", c.Card.BaseURL)

	c.RateLimit.RequestsPerSecond = getIntEnv("RATE_LIMIT_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.BurstSize = getIntEnv("RATE_LIMIT_BURST", c.RateLimit.BurstSize)
	c.Cache.TTL = getDurationEnv("CACHE_TTL", c.Cache.TTL)
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	return validation.NewCentralizedValidator().ValidateStruct(c)
}

// TargetVersion returns the configured vCard version.
func (c *CardConfig) TargetVersion() vcard.Version {
	v, ok := vcard.ParseVersion(c.Version)
	if !ok {
		return vcard.V30
	}
	return v
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if value == "0" {
			return 0
		}
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
