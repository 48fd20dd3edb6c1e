package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalCache(t *testing.T) {
	c := NewLocalCache(DefaultConfig())

	_, found := c.Get("missing")
	assert.False(t, found)

	c.Set("a", 1, 0)
	c.Set("b", "two", time.Hour)
	assert.Equal(t, 2, c.Len())

	val, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, 1, val)

	c.Delete("a")
	_, found = c.Get("a")
	assert.False(t, found)

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestLocalCache_Expiry(t *testing.T) {
	c := NewLocalCache(Config{TTL: time.Hour})

	c.Set("short", true, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, found := c.Get("short")
	assert.False(t, found)
}
