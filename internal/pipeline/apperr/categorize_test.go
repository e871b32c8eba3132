package apperr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"corruption-watch/internal/pipeline/apperr"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		r    apperr.Result
		want string
	}{
		{"no error", apperr.Result{Extracted: true, Classified: true, Relevant: true, Stored: true}, "none"},
		{"extraction failed", apperr.Result{Error: "boom"}, "extraction"},
		{"classification failed", apperr.Result{Extracted: true, Error: "boom"}, "classification"},
		{"storage failed", apperr.Result{Extracted: true, Classified: true, Relevant: true, Error: "boom"}, "storage"},
		{"other", apperr.Result{Extracted: true, Classified: true, Relevant: false, Error: "boom"}, "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Categorize(tt.r))
		})
	}
}
