// Package fetcher implements the L1 HTTP fetcher of spec §4.1: GET
// with a custom user agent, bounded retry, circuit breaking, and SSRF
// protection, returning raw HTML for the extractor to parse.
package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for HTTP fetch operations.
type Config struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 30s, per spec §4.1's "≤30s total deadline per attempt".
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Default: 10MB.
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow.
	// Default: 5.
	MaxRedirects int

	// DenyPrivateIPs blocks requests that resolve to a private,
	// loopback, or link-local IP address (SSRF prevention).
	// Default: true.
	DenyPrivateIPs bool

	// MaxRetries bounds the number of retry attempts for transient
	// failures. Default: 3, per spec §4.1.
	MaxRetries int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		MaxRetries:     3,
	}
}

// Validate checks the configuration for safe, usable values.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 0 and 10, got %d", c.MaxRetries)
	}
	return nil
}

// LoadConfigFromEnv loads configuration from environment variables,
// falling back to DefaultConfig for anything unset.
//
// Environment variables:
//   - FETCH_TIMEOUT: duration string (default 30s)
//   - FETCH_MAX_BODY_SIZE: bytes (default 10485760)
//   - FETCH_MAX_REDIRECTS: integer (default 5)
//   - FETCH_DENY_PRIVATE_IPS: "true"/"false" (default true)
//   - FETCH_MAX_RETRIES: integer (default 3)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
		cfg.Timeout = parsed
	}

	if v := os.Getenv("FETCH_MAX_BODY_SIZE"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_MAX_BODY_SIZE: %w", err)
		}
		cfg.MaxBodySize = parsed
	}

	if v := os.Getenv("FETCH_MAX_REDIRECTS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_MAX_REDIRECTS: %w", err)
		}
		cfg.MaxRedirects = parsed
	}

	if v := os.Getenv("FETCH_DENY_PRIVATE_IPS"); v != "" {
		cfg.DenyPrivateIPs = v == "true"
	}

	if v := os.Getenv("FETCH_MAX_RETRIES"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_MAX_RETRIES: %w", err)
		}
		cfg.MaxRetries = parsed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
