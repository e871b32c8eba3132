package model

import (
	"strings"
	"time"
)

// MinBodyTextLength is the floor enforced on extracted and
// classification-input body text (spec §4.2, §8 boundary behavior:
// exactly 50 is accepted, 49 is rejected).
const MinBodyTextLength = 50

// ExtractedArticleContent is the output of the extractor for one
// fetch. It is not persisted as a distinct entity; its fields seed
// ClassificationInput and, on successful storage, Article.
type ExtractedArticleContent struct {
	Title         string
	FullText      string
	Author        string
	PublishedDate *time.Time
}

// Validate enforces the extractor's own floor: a non-empty title and
// a body of at least MinBodyTextLength runes after trimming.
func (e ExtractedArticleContent) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &FieldError{Field: "title", Message: "must not be empty"}
	}
	if len([]rune(strings.TrimSpace(e.FullText))) < MinBodyTextLength {
		return &FieldError{Field: "full_text", Message: "must be at least 50 characters after trimming"}
	}
	return nil
}
