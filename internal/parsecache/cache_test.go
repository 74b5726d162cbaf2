package parsecache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqsql/linqsql/internal/parsecache"
)

func TestCacheGetSetRoundTrip(t *testing.T) {
	c := parsecache.New[int](parsecache.DefaultCapacity)

	_, ok := c.Get("select-all")
	assert.False(t, ok)

	c.Set("select-all", 42)

	v, ok := c.Get("select-all")
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, c.Len())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := parsecache.New[string](2)

	c.Set("a", "A")
	c.Set("b", "B")

	// touch "a" so "b" becomes the least recently used entry
	_, _ = c.Get("a")

	c.Set("c", "C")

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")

	_, ok = c.Get("a")
	assert.True(t, ok)

	_, ok = c.Get("c")
	assert.True(t, ok)

	assert.Equal(t, 2, c.Len())
}

func TestCacheDisabledSkipsReadsAndWrites(t *testing.T) {
	c := parsecache.New[int](parsecache.DefaultCapacity)

	c.Set("x", 1)
	c.SetEnabled(false)

	assert.False(t, c.Enabled())

	_, ok := c.Get("x")
	assert.False(t, ok, "a disabled cache must always miss")

	c.Set("y", 2)

	c.SetEnabled(true)

	_, ok = c.Get("y")
	assert.False(t, ok, "writes while disabled must not be persisted")

	v, ok := c.Get("x")
	assert.True(t, ok, "entries written before disabling survive a disable/enable cycle")
	assert.Equal(t, 1, v)
}

func TestCacheClearRemovesEverything(t *testing.T) {
	c := parsecache.New[int](parsecache.DefaultCapacity)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	assert.Equal(t, 0, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCacheNonPositiveCapacityDisablesEviction(t *testing.T) {
	c := parsecache.New[int](0)

	for i := range 10 {
		c.Set(string(rune('a'+i)), i)
	}

	assert.Equal(t, 10, c.Len())
}

func TestCacheSetCapacityAndCapacity(t *testing.T) {
	c := parsecache.New[int](5)
	assert.Equal(t, 5, c.Capacity())

	c.SetCapacity(1)
	assert.Equal(t, 1, c.Capacity())

	c.Set("a", 1)
	c.Set("b", 2)

	assert.Equal(t, 1, c.Len())
}
