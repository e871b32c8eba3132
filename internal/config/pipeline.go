package config

import (
	"fmt"
	"os"
	"strconv"
)

// PipelineConfig holds the orchestrator-level defaults of spec §4.8,
// §4.9 and §6 that aren't tied to one specific stage: the relevance
// threshold and batch concurrency bounds.
type PipelineConfig struct {
	// MinConfidence is the default relevance threshold ∈ [0,1].
	// Loaded from PIPELINE_MIN_CONFIDENCE. Default: 0.7.
	MinConfidence float64

	// DefaultConcurrency is the batch driver's default worker count
	// ∈ [1,10]. Loaded from PIPELINE_CONCURRENCY. Default: 4.
	DefaultConcurrency int
}

// DefaultPipelineConfig mirrors spec §6's CLI defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MinConfidence:      0.7,
		DefaultConcurrency: 4,
	}
}

// LoadPipelineConfig reads PIPELINE_MIN_CONFIDENCE and
// PIPELINE_CONCURRENCY, falling back to defaults on a missing or
// malformed value.
func LoadPipelineConfig() (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()

	if v := os.Getenv("PIPELINE_MIN_CONFIDENCE"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid PIPELINE_MIN_CONFIDENCE: %w", err)
		}
		cfg.MinConfidence = parsed
	}

	if v := os.Getenv("PIPELINE_CONCURRENCY"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid PIPELINE_CONCURRENCY: %w", err)
		}
		cfg.DefaultConcurrency = parsed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate enforces the §6/§8 bounds: confidence ∈ [0,1], concurrency
// ∈ [1,10].
func (c PipelineConfig) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be between 0 and 1, got %v", c.MinConfidence)
	}
	if c.DefaultConcurrency < 1 || c.DefaultConcurrency > 10 {
		return fmt.Errorf("concurrency must be between 1 and 10, got %d", c.DefaultConcurrency)
	}
	return nil
}
