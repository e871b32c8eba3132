// Package config loads environment-driven configuration for every
// ambient and domain concern of the pipeline, following the teacher's
// LoadXConfig() (X, error) + Validate() error pattern.
package config

import (
	"fmt"
	"os"
)

// DatabaseConfig holds the connection string for the Postgres pool
// that backs the repositories of §4.7 and the pool of §L10.
type DatabaseConfig struct {
	// DSN is the Postgres connection string. Loaded from DATABASE_URL.
	DSN string
}

// LoadDatabaseConfig reads DATABASE_URL from the environment.
func LoadDatabaseConfig() (DatabaseConfig, error) {
	cfg := DatabaseConfig{DSN: os.Getenv("DATABASE_URL")}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate requires a non-empty DSN.
func (c DatabaseConfig) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	return nil
}
