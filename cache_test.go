package linqsql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqsql/linqsql"
)

func TestParseCacheConfigRoundTrip(t *testing.T) {
	original := linqsql.GetParseCacheConfig()
	t.Cleanup(func() {
		_ = linqsql.SetParseCacheConfig(original)
	})

	err := linqsql.SetParseCacheConfig(linqsql.ParseCacheConfig{Enabled: false, Capacity: 16})
	require.NoError(t, err)

	cfg := linqsql.GetParseCacheConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 16, cfg.Capacity)
}

func TestSetParseCacheConfigRejectsNonPositiveCapacity(t *testing.T) {
	original := linqsql.GetParseCacheConfig()
	t.Cleanup(func() {
		_ = linqsql.SetParseCacheConfig(original)
	})

	err := linqsql.SetParseCacheConfig(linqsql.ParseCacheConfig{Enabled: true, Capacity: 0})
	require.Error(t, err)
}

func TestClearParseCacheDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		linqsql.ClearParseCache()
	})
}
