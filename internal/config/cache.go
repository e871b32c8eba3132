package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// CacheConfig holds the entity cache's capacity and TTL (spec §4.5).
type CacheConfig struct {
	// MaxSize is the maximum number of entries before LRU eviction
	// kicks in. Loaded from ENTITY_CACHE_MAX_SIZE. Default: 100000.
	MaxSize int

	// TTL is how long an entry remains valid before a lookup treats
	// it as a miss. Loaded from ENTITY_CACHE_TTL. Default: 14 days.
	TTL time.Duration
}

// DefaultCacheConfig mirrors the original's
// InMemoryEntityCache(max_size=100_000, ttl_seconds=14*24*60*60).
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize: 100_000,
		TTL:     14 * 24 * time.Hour,
	}
}

// LoadCacheConfig reads ENTITY_CACHE_MAX_SIZE and ENTITY_CACHE_TTL.
func LoadCacheConfig() (CacheConfig, error) {
	cfg := DefaultCacheConfig()

	if v := os.Getenv("ENTITY_CACHE_MAX_SIZE"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ENTITY_CACHE_MAX_SIZE: %w", err)
		}
		cfg.MaxSize = parsed
	}

	if v := os.Getenv("ENTITY_CACHE_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ENTITY_CACHE_TTL: %w", err)
		}
		cfg.TTL = parsed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate requires a positive size and TTL.
func (c CacheConfig) Validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("max size must be positive, got %d", c.MaxSize)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %v", c.TTL)
	}
	return nil
}
