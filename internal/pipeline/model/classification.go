package model

import (
	"strings"
	"time"
)

// ClassifierType enumerates the relevance topics a classifier can
// judge an article against.
type ClassifierType string

const (
	ClassifierCorruption      ClassifierType = "CORRUPTION"
	ClassifierHurricaneRelief ClassifierType = "HURRICANE_RELIEF"
)

// ClassificationInput is the extractor's output plus discovery
// context, the immutable value every classifier receives.
type ClassificationInput struct {
	URL           string
	Title         string
	Section       string
	FullText      string
	PublishedDate *time.Time
}

// Validate applies the same textual invariants as
// ExtractedArticleContent plus the URL-shape rule.
func (c ClassificationInput) Validate() error {
	if err := validateURLShape(c.URL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Title) == "" {
		return &FieldError{Field: "title", Message: "must not be empty"}
	}
	if strings.TrimSpace(c.Section) == "" {
		return &FieldError{Field: "section", Message: "must not be empty"}
	}
	if len([]rune(strings.TrimSpace(c.FullText))) < MinBodyTextLength {
		return &FieldError{Field: "full_text", Message: "must be at least 50 characters after trimming"}
	}
	return nil
}

// NewClassificationInput converts extractor output plus discovery
// context into a ClassificationInput, trimming key_entities-adjacent
// textual fields the same way the extractor does.
func NewClassificationInput(extracted ExtractedArticleContent, url, section string) ClassificationInput {
	return ClassificationInput{
		URL:           url,
		Title:         strings.TrimSpace(extracted.Title),
		Section:       section,
		FullText:      strings.TrimSpace(extracted.FullText),
		PublishedDate: extracted.PublishedDate,
	}
}

// ClassificationResult is one classifier's verdict on one input.
type ClassificationResult struct {
	IsRelevant     bool
	Confidence     float64
	Reasoning      string
	KeyEntities    []string
	ClassifierType ClassifierType
	ModelName      string
}

// CleanKeyEntities trims every entity string and drops empties,
// matching the "list of trimmed non-empty strings" invariant of §3.
func CleanKeyEntities(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		trimmed := strings.TrimSpace(e)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
