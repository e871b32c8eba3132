// Package model defines the value types and persistent entities that
// flow through the pipeline: discovery, extraction, classification,
// normalization, and storage.
package model

import (
	"strings"
	"time"

	"corruption-watch/internal/pipeline/apperr"
)

// DiscoveredArticle is a lead produced by a discoverer. It is created
// once and never mutated; the orchestrator consumes it by value.
type DiscoveredArticle struct {
	URL           string     `json:"url" yaml:"url"`
	NewsSourceID  int64      `json:"news_source_id" yaml:"news_source_id"`
	Section       string     `json:"section" yaml:"section"`
	DiscoveredAt  time.Time  `json:"discovered_at" yaml:"discovered_at"`
	Title         string     `json:"title,omitempty" yaml:"title,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty" yaml:"published_date,omitempty"`
}

// Validate enforces the invariants of spec §3: a URL-shaped, non-empty
// URL, a positive news source ID, a non-empty section, and a required
// discovered-at instant.
func (d DiscoveredArticle) Validate() error {
	if err := validateURLShape(d.URL); err != nil {
		return err
	}
	if d.NewsSourceID <= 0 {
		return &FieldError{Field: "news_source_id", Message: "must be a positive integer"}
	}
	if strings.TrimSpace(d.Section) == "" {
		return &FieldError{Field: "section", Message: "must not be empty"}
	}
	if d.DiscoveredAt.IsZero() {
		return &FieldError{Field: "discovered_at", Message: "is required"}
	}
	return nil
}

// FieldError reports a single-field validation failure with enough
// context for a caller to report the offending field by name.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return "validation error on field '" + e.Field + "': " + e.Message
}

func (e *FieldError) Unwrap() error {
	return apperr.ErrInvalidInput
}

func validateURLShape(u string) error {
	trimmed := strings.TrimSpace(u)
	if trimmed == "" {
		return &FieldError{Field: "url", Message: "must not be empty"}
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return &FieldError{Field: "url", Message: "must start with http:// or https://"}
	}
	return nil
}
