package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqhub/aqhub/internal/cache"
)

func TestKeyNormalization(t *testing.T) {
	assert.Equal(t, cache.Key("Bangkok"), cache.Key("bangkok"))
	assert.Equal(t, cache.Key("  Bangkok  "), cache.Key("bangkok"))
	assert.Equal(t, cache.Key("New   York"), cache.Key("new york"))
	assert.Equal(t, "city:bangkok:thailand", cache.Key("city", "Bangkok", "Thailand"))
	assert.NotEqual(t, cache.Key("city", "bangkok"), cache.Key("city", "bangkik"))
}

func TestCache_SetGet(t *testing.T) {
	c := cache.New[string](time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCache_Expiry(t *testing.T) {
	c := cache.New[int](10 * time.Millisecond)
	c.Set("k", 42)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	time.Sleep(25 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().Keys, "expired entry should be evicted on access")
}

func TestCache_IdempotentReads(t *testing.T) {
	// Simulates an adapter guarding an upstream call: the fetch function
	// must run once per key while the entry is fresh.
	c := cache.New[string](time.Minute)
	fetches := 0
	lookup := func(city string) string {
		key := cache.Key("city", city)
		if v, ok := c.Get(key); ok {
			return v
		}
		fetches++
		v := "reading-for-" + key
		c.Set(key, v)
		return v
	}

	first := lookup("Bangkok")
	second := lookup("bangkok")
	third := lookup(" BANGKOK ")

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Equal(t, 1, fetches)
}

func TestCache_Clear(t *testing.T) {
	c := cache.New[string](time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	assert.Equal(t, 2, c.Clear())
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().Keys)
}

func TestCache_Stats(t *testing.T) {
	c := cache.New[string](time.Minute)

	c.Get("missing")
	c.Set("k", "v")
	c.Get("k")
	c.Get("k")

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Keys)
}

func TestCache_DefaultTTL(t *testing.T) {
	c := cache.New[string](0)
	c.Set("k", "v")
	_, ok := c.Get("k")
	assert.True(t, ok)
}
