package sqlite

import (
	"card-codec/internal/common/errors"
	"card-codec/internal/storage"
)

type Factory struct{}

// Create accepts a *Config or a storage.GenericConfig carrying "path".
func (f *Factory) Create(config storage.StorageConfig) (storage.Storage, error) {
	switch c := config.(type) {
	case *Config:
		return NewAdapter(c)
	case storage.GenericConfig:
		return NewAdapter(&Config{DatabasePath: c.String("path")})
	default:
		return nil, errors.ConfigError("invalid config type for SQLite storage")
	}
}

func (f *Factory) GetType() string {
	return "sqlite"
}

func init() {
	storage.Register("sqlite", &Factory{})
}
