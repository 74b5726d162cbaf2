package linqsql

import "github.com/linqsql/linqsql/compileerr"

// ParseCacheConfig is the parse cache's runtime-mutable configuration: the
// lowered-chain cache every Define* call consults before invoking the
// parser and lowerer.
type ParseCacheConfig struct {
	Enabled  bool
	Capacity int
}

// SetParseCacheConfig applies cfg to the shared parse cache. A non-positive
// capacity is rejected rather than silently disabling eviction, since the
// zero value of an unset config would otherwise turn caching unbounded by
// accident.
func SetParseCacheConfig(cfg ParseCacheConfig) error {
	if cfg.Capacity <= 0 {
		return compileerr.Config("setParseCacheConfig", "capacity must be positive, got %d", cfg.Capacity)
	}

	cache.SetCapacity(cfg.Capacity)
	cache.SetEnabled(cfg.Enabled)

	return nil
}

// GetParseCacheConfig reports the parse cache's current configuration.
func GetParseCacheConfig() ParseCacheConfig {
	return ParseCacheConfig{
		Enabled:  cache.Enabled(),
		Capacity: cache.Capacity(),
	}
}

// ClearParseCache discards every memoised builder chain. Plan handles
// already produced by Define* are unaffected: they hold their own operation
// tree independent of the cache entry that built it.
func ClearParseCache() {
	cache.Clear()
}
