package batch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/usecase/batch"
)

type stubOrchestrator struct {
	byURL map[string]model.OrchestrationResult
	panic map[string]bool
}

func (s stubOrchestrator) ProcessArticle(_ context.Context, url, _ string, _ int64, _ float64, _ bool) model.OrchestrationResult {
	if s.panic[url] {
		panic("boom")
	}
	return s.byURL[url]
}

func TestProcessConcurrent_AccumulatesStatsAndResults(t *testing.T) {
	articles := []model.DiscoveredArticle{
		{URL: "https://example.com/stored", Section: "politics", NewsSourceID: 1},
		{URL: "https://example.com/duplicate", Section: "politics", NewsSourceID: 1},
		{URL: "https://example.com/failed", Section: "politics", NewsSourceID: 1},
	}
	orchestrator := stubOrchestrator{byURL: map[string]model.OrchestrationResult{
		"https://example.com/stored":    {URL: "https://example.com/stored", Extracted: true, Classified: true, Relevant: true, Stored: true},
		"https://example.com/duplicate": {URL: "https://example.com/duplicate", Extracted: true, Classified: true, Relevant: true, Stored: false},
		"https://example.com/failed":    {URL: "https://example.com/failed", Extracted: false, Error: "Failed to extract article: timeout", ErrorStage: "extraction"},
	}}
	stats := batch.NewStatistics(len(articles))

	results := batch.ProcessConcurrent(context.Background(), articles, orchestrator, stats, batch.Options{Concurrency: 2})

	require.Len(t, results, 3)
	snap := stats.Snapshot()
	assert.Equal(t, 3, snap.Processed)
	assert.Equal(t, 1, snap.Stored)
	assert.Equal(t, 1, snap.Duplicates)
	assert.Equal(t, 1, snap.ExtractionErrors)
}

func TestProcessConcurrent_RecoversFromPanic(t *testing.T) {
	articles := []model.DiscoveredArticle{
		{URL: "https://example.com/panics", Section: "politics", NewsSourceID: 1},
	}
	orchestrator := stubOrchestrator{panic: map[string]bool{"https://example.com/panics": true}}
	stats := batch.NewStatistics(1)

	results := batch.ProcessConcurrent(context.Background(), articles, orchestrator, stats, batch.Options{Concurrency: 1})

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "Unexpected error")
	assert.Equal(t, 1, stats.Snapshot().OtherErrors, "a panicking task must still count as a finished, failed task")
}

func TestProcessConcurrent_PreservesOrderAcrossWorkers(t *testing.T) {
	var articles []model.DiscoveredArticle
	byURL := map[string]model.OrchestrationResult{}
	for i := 0; i < 20; i++ {
		url := "https://example.com/" + string(rune('a'+i))
		articles = append(articles, model.DiscoveredArticle{URL: url, Section: "politics", NewsSourceID: 1})
		byURL[url] = model.OrchestrationResult{URL: url, Stored: true, Extracted: true, Classified: true, Relevant: true}
	}
	orchestrator := stubOrchestrator{byURL: byURL}
	stats := batch.NewStatistics(len(articles))

	results := batch.ProcessConcurrent(context.Background(), articles, orchestrator, stats, batch.Options{Concurrency: 4})

	require.Len(t, results, len(articles))
	for i, a := range articles {
		assert.Equal(t, a.URL, results[i].URL, "results must align with input order despite concurrent workers")
	}
}
