// Package storage persists address-book cards.
//
// Cards are stored as vCard 4.0 text keyed by their UID. Backends implement
// Storage and register a StorageFactory under their type name; the sqlite
// backend registers itself as "sqlite" when imported:
//
//	import _ "card-codec/internal/storage/sqlite"
//
//	store, err := storage.NewStorage(cfg)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	book := storage.NewAddressBook(store, storage.AddressBookConfig{})
//	cards, warnings, err := book.Import(records)
package storage

import (
	"time"
)

// Storage is a card store.
type Storage interface {
	Close() error
	Health() error

	// PutCard inserts the card or replaces the card with the same UID.
	PutCard(card *Card) error
	// GetCard returns a not_found error when no card has the UID.
	GetCard(uid string) (*Card, error)
	// ListCards returns one page of cards ordered by formatted name and the
	// total number of cards.
	ListCards(limit, offset int) ([]*Card, int, error)
	// DeleteCard returns a not_found error when no card has the UID.
	DeleteCard(uid string) error
}

// Card is one stored record.
type Card struct {
	UID           string    `json:"uid"`
	FormattedName string    `json:"formatted_name"`
	Text          string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StorageConfig is the backend-specific configuration handed to a factory.
type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

// StorageFactory creates a backend from its configuration.
type StorageFactory interface {
	Create(config StorageConfig) (Storage, error)
	GetType() string
}

// GenericConfig is a map-based StorageConfig that factories translate into
// their own configuration type.
type GenericConfig map[string]interface{}

func (gc GenericConfig) Validate() error {
	return nil
}

func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

func (gc GenericConfig) GetConnectionString() string {
	if cs, ok := gc["connection_string"].(string); ok {
		return cs
	}
	return ""
}

// String returns the value stored under key, or "".
func (gc GenericConfig) String(key string) string {
	s, _ := gc[key].(string)
	return s
}
