package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

func TestDiscoveredArticle_Validate(t *testing.T) {
	base := model.DiscoveredArticle{
		URL:          "https://example.test/news/a",
		NewsSourceID: 1,
		Section:      "news",
		DiscoveredAt: time.Now(),
	}

	tests := []struct {
		name    string
		mutate  func(d model.DiscoveredArticle) model.DiscoveredArticle
		wantErr bool
	}{
		{"valid", func(d model.DiscoveredArticle) model.DiscoveredArticle { return d }, false},
		{"empty url", func(d model.DiscoveredArticle) model.DiscoveredArticle { d.URL = ""; return d }, true},
		{"bad scheme", func(d model.DiscoveredArticle) model.DiscoveredArticle { d.URL = "ftp://x"; return d }, true},
		{"zero source id", func(d model.DiscoveredArticle) model.DiscoveredArticle { d.NewsSourceID = 0; return d }, true},
		{"negative source id", func(d model.DiscoveredArticle) model.DiscoveredArticle { d.NewsSourceID = -1; return d }, true},
		{"empty section", func(d model.DiscoveredArticle) model.DiscoveredArticle { d.Section = "  "; return d }, true},
		{"zero discovered_at", func(d model.DiscoveredArticle) model.DiscoveredArticle { d.DiscoveredAt = time.Time{}; return d }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(base).Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
