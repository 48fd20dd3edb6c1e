package storage

import (
	"card-codec/internal/config"
)

// DefaultType is the backend used by the binary.
const DefaultType = "sqlite"

// NewStorage creates the address-book backend named by DefaultType. The
// backend package must have been imported so that its factory is registered.
func NewStorage(cfg *config.Config) (Storage, error) {
	storageConfig := GenericConfig{
		"type": DefaultType,
		"path": cfg.AddressBookPath,
	}
	return Create(DefaultType, storageConfig)
}
