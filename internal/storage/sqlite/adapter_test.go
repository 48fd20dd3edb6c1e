package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-codec/internal/common/errors"
	"card-codec/internal/storage"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(&Config{DatabasePath: filepath.Join(t.TempDir(), "book.db")})
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func card(uid, name string, at time.Time) *storage.Card {
	return &storage.Card{
		UID:           uid,
		FormattedName: name,
		Text:          "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:" + name + "\r\nEND:VCARD\r\n",
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func TestAdapter_PutGetDelete(t *testing.T) {
	adapter := newTestAdapter(t)
	require.NoError(t, adapter.Health())

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, adapter.PutCard(card("urn:uuid:1", "Jane Doe", created)))

	got, err := adapter.GetCard("urn:uuid:1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.FormattedName)
	assert.Contains(t, got.Text, "FN:Jane Doe")
	assert.True(t, got.CreatedAt.Equal(created))

	updated := created.Add(time.Hour)
	replacement := card("urn:uuid:1", "Jane Smith", updated)
	require.NoError(t, adapter.PutCard(replacement))

	got, err = adapter.GetCard("urn:uuid:1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got.FormattedName)
	assert.True(t, got.CreatedAt.Equal(created), "replacing keeps the creation time")
	assert.True(t, got.UpdatedAt.Equal(updated))

	require.NoError(t, adapter.DeleteCard("urn:uuid:1"))
	_, err = adapter.GetCard("urn:uuid:1")
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	assert.True(t, errors.IsType(adapter.DeleteCard("urn:uuid:1"), errors.ErrTypeNotFound))
}

func TestAdapter_ListCards(t *testing.T) {
	adapter := newTestAdapter(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"carol", "Alice", "bob"} {
		require.NoError(t, adapter.PutCard(card("urn:uuid:"+string(rune('a'+i)), name, at)))
	}

	cards, total, err := adapter.ListCards(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, cards, 2)
	assert.Equal(t, "Alice", cards[0].FormattedName)
	assert.Equal(t, "bob", cards[1].FormattedName)

	cards, total, err = adapter.ListCards(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, cards, 1)
	assert.Equal(t, "carol", cards[0].FormattedName)
}

func TestFactory(t *testing.T) {
	assert.True(t, storage.DefaultRegistry.IsRegistered("sqlite"))

	store, err := storage.Create("sqlite", storage.GenericConfig{
		"type": "sqlite",
		"path": filepath.Join(t.TempDir(), "generic.db"),
	})
	require.NoError(t, err)
	defer store.Close()
	assert.NoError(t, store.Health())

	_, err = (&Factory{}).Create(&Config{})
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	_, err = storage.Create("postgres", storage.GenericConfig{})
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}
