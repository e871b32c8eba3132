package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"corruption-watch/internal/pipeline/model"
)

func TestClassificationInput_Validate_BodyLengthBoundary(t *testing.T) {
	base := model.ClassificationInput{
		URL:     "https://example.test/a",
		Title:   "T",
		Section: "news",
	}

	exactly50 := strings.Repeat("a", 50)
	only49 := strings.Repeat("a", 49)

	t.Run("exactly 50 chars accepted", func(t *testing.T) {
		in := base
		in.FullText = exactly50
		assert.NoError(t, in.Validate())
	})

	t.Run("49 chars rejected", func(t *testing.T) {
		in := base
		in.FullText = only49
		assert.Error(t, in.Validate())
	})
}

func TestCleanKeyEntities(t *testing.T) {
	got := model.CleanKeyEntities([]string{"  OCG ", "", "Ministry of Education", "   "})
	assert.Equal(t, []string{"OCG", "Ministry of Education"}, got)
}

func TestNewClassificationInput(t *testing.T) {
	published := model.ExtractedArticleContent{
		Title:    "  OCG Probes Ministry  ",
		FullText: "  " + strings.Repeat("x", 60) + "  ",
	}
	in := model.NewClassificationInput(published, "https://example.test/a", "news")
	assert.Equal(t, "OCG Probes Ministry", in.Title)
	assert.Equal(t, strings.Repeat("x", 60), in.FullText)
	assert.Equal(t, "news", in.Section)
}
