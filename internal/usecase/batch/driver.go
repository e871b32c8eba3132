package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"corruption-watch/internal/observability/metrics"
	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

// Orchestrator is the subset of orchestration.Service the driver
// needs: run one URL end to end.
type Orchestrator interface {
	ProcessArticle(ctx context.Context, url, section string, newsSourceID int64, minConfidence float64, dryRun bool) model.OrchestrationResult
}

// Options configures one batch run.
type Options struct {
	Concurrency   int // 1..10
	MinConfidence float64
	DryRun        bool
}

// ProcessConcurrent runs every article through orchestrator with
// bounded concurrency opts.Concurrency, updating stats as each
// finishes, and returns every result including failures (spec §4.9
// step 4-5). An unexpected panic from a single task is caught and
// converted into an "other" error result rather than aborting the
// batch.
func ProcessConcurrent(ctx context.Context, articles []model.DiscoveredArticle, orchestrator Orchestrator, stats *Statistics, opts Options) []model.OrchestrationResult {
	batchStart := time.Now()
	results := make([]model.OrchestrationResult, len(articles))
	sem := make(chan struct{}, opts.Concurrency)

	var g errgroup.Group
	for i, article := range articles {
		i, article := i, article
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = processOne(ctx, orchestrator, article, stats, opts)
			return nil
		})
	}
	_ = g.Wait()

	metrics.RecordBatchDuration(time.Since(batchStart))
	return results
}

// processOne runs one article, recovering from any panic the
// orchestrator raises and converting it into an "other" error result
// so the worker pool keeps draining the rest of the batch.
func processOne(ctx context.Context, orchestrator Orchestrator, article model.DiscoveredArticle, stats *Statistics, opts Options) (result model.OrchestrationResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("unexpected panic processing article", slog.String("url", article.URL), slog.Any("panic", r))
			result = model.OrchestrationResult{
				URL: article.URL, Section: article.Section,
				Error: fmt.Sprintf("Unexpected error: %v", r),
			}
			stats.Apply(Delta{ErrorCategory: "other"})
		}
	}()

	result = orchestrator.ProcessArticle(ctx, article.URL, article.Section, article.NewsSourceID, opts.MinConfidence, opts.DryRun)

	category := apperr.Categorize(apperr.Result{
		Extracted: result.Extracted, Classified: result.Classified,
		Relevant: result.Relevant, Stored: result.Stored, Error: result.Error,
	})
	duplicate := result.Extracted && result.Classified && result.Relevant && !result.Stored && result.Error == ""

	delta := Delta{
		Extracted: result.Extracted, Classified: result.Classified,
		Relevant: result.Relevant, Stored: result.Stored, Duplicate: duplicate,
	}
	if category != "none" {
		delta.ErrorCategory = category
	}
	stats.Apply(delta)

	metrics.RecordBatchArticleProcessed(batchOutcome(result, duplicate))
	return result
}

// batchOutcome maps one article's terminal state to the
// BatchArticlesProcessedTotal outcome label.
func batchOutcome(result model.OrchestrationResult, duplicate bool) string {
	switch {
	case result.Error != "":
		return "failed"
	case duplicate:
		return "duplicate"
	case result.Stored:
		return "stored"
	default:
		return "filtered"
	}
}

// RunLiveProgress samples stats twice a second and re-renders a
// terminal progress line with a carriage return, until done is
// closed. Intended to run in its own goroutine alongside
// ProcessConcurrent.
func RunLiveProgress(done <-chan struct{}, stats *Statistics, render func(Snapshot)) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			render(stats.Snapshot())
			return
		case <-ticker.C:
			render(stats.Snapshot())
		}
	}
}
