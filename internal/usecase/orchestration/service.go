// Package orchestration implements the per-URL pipeline of spec §4.8:
// extract, convert, classify, filter, normalize, store, with exactly
// one canonical structured log line per call.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"corruption-watch/internal/observability/logging"
	"corruption-watch/internal/observability/metrics"
	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

// Fetcher retrieves raw HTML for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ArticleExtractor extracts article content from raw HTML.
type ArticleExtractor interface {
	Extract(html, url string) (model.ExtractedArticleContent, error)
}

// Classifier fans a ClassificationInput out across the configured
// classifier set.
type Classifier interface {
	Classify(ctx context.Context, input model.ClassificationInput) ([]model.ClassificationResult, error)
}

// Normalizer resolves raw entity names to their canonical form.
type Normalizer interface {
	Normalize(ctx context.Context, names []string) ([]model.NormalizedEntity, error)
}

// Storer persists an article together with its relevant
// classifications and normalized entities.
type Storer interface {
	StoreArticleWithClassifications(
		ctx context.Context,
		extracted model.ExtractedArticleContent,
		url, section string,
		relevantClassifications []model.ClassificationResult,
		normalizedEntities []model.NormalizedEntity,
		newsSourceID int64,
		dryRun bool,
	) (model.ArticleStorageResult, error)
}

// lifecycleOpener is implemented by a Fetcher that pools HTTP
// connections across calls and needs an explicit open.
type lifecycleOpener interface {
	Open()
}

// lifecycleCloser is the Open counterpart.
type lifecycleCloser interface {
	Close() error
}

// DefaultMinConfidence is applied when a caller passes a non-positive
// threshold.
const DefaultMinConfidence = 0.7

// Service runs the full per-URL pipeline over injected stage
// implementations.
type Service struct {
	Fetcher     Fetcher
	Extractor   ArticleExtractor
	Classifier  Classifier
	Normalizer  Normalizer
	Persistence Storer
}

// NewService builds an orchestration service over the given stages.
func NewService(fetcher Fetcher, extractor ArticleExtractor, classifier Classifier, normalizer Normalizer, persistence Storer) *Service {
	return &Service{Fetcher: fetcher, Extractor: extractor, Classifier: classifier, Normalizer: normalizer, Persistence: persistence}
}

// WithScope opens the fetcher's pooled HTTP lifecycle, if it supports
// one, runs fn, and closes it on the way out. Calling ProcessArticle
// without WithScope is safe for one-shot use.
func (s *Service) WithScope(fn func() error) error {
	if opener, ok := s.Fetcher.(lifecycleOpener); ok {
		opener.Open()
	}
	defer func() {
		if closer, ok := s.Fetcher.(lifecycleCloser); ok {
			_ = closer.Close()
		}
	}()
	return fn()
}

// ProcessArticle runs extract -> convert -> classify -> filter ->
// normalize -> store for one URL, emitting exactly one canonical log
// line regardless of outcome. When dryRun is true the store stage
// still runs (so classification and storage-shape errors surface
// normally) but nothing persists (spec §4.9 step 4).
func (s *Service) ProcessArticle(ctx context.Context, url, section string, newsSourceID int64, minConfidence float64, dryRun bool) model.OrchestrationResult {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}

	pipelineStart := time.Now()
	attrs := []slog.Attr{
		slog.String("url", url),
		slog.String("section", section),
		slog.Int64("news_source_id", newsSourceID),
		slog.Float64("min_confidence", minConfidence),
	}
	if runID := logging.RunIDFromContext(ctx); runID != "" {
		attrs = append(attrs, slog.String("run_id", runID))
	}

	result, attrs, level := s.run(ctx, url, section, newsSourceID, minConfidence, dryRun, attrs)
	attrs = append(attrs, slog.Float64("total_duration_ms", msSince(pipelineStart)))

	slog.LogAttrs(ctx, level, "canonical-log-line", attrs...)
	return result
}

func (s *Service) run(
	ctx context.Context,
	url, section string,
	newsSourceID int64,
	minConfidence float64,
	dryRun bool,
	attrs []slog.Attr,
) (model.OrchestrationResult, []slog.Attr, slog.Level) {
	// Stage 1: extract.
	extractStart := time.Now()
	html, fetchErr := s.Fetcher.Fetch(ctx, url)
	fetchDuration := time.Since(extractStart)
	if fetchErr != nil {
		metrics.RecordContentFetchFailed(fetchDuration, isTransient(fetchErr))
	} else {
		metrics.RecordContentFetchSuccess(fetchDuration)
	}
	var extracted model.ExtractedArticleContent
	err := fetchErr
	if err == nil {
		extracted, err = s.Extractor.Extract(html, url)
		metrics.RecordExtractionAttempt("primary", err == nil)
	}
	attrs = append(attrs, slog.Float64("extraction_duration_ms", msSince(extractStart)))
	if err != nil {
		attrs = append(attrs,
			slog.Bool("extracted", false), slog.Bool("classified", false),
			slog.Bool("relevant", false), slog.Bool("stored", false),
			slog.String("error", fmt.Sprintf("Failed to extract article: %v", err)),
			slog.String("error_stage", "extraction"))
		return model.OrchestrationResult{URL: url, Section: section, Error: fmt.Sprintf("Failed to extract article: %v", err), ErrorStage: "extraction"}, attrs, slog.LevelError
	}
	metrics.RecordExtractedBodyLength(len([]rune(extracted.FullText)))
	attrs = append(attrs, slog.Bool("extracted", true), slog.String("extracted_title", truncate(extracted.Title, 100)))

	// Stage 2: convert.
	input := model.NewClassificationInput(extracted, url, section)
	if err := input.Validate(); err != nil {
		attrs = append(attrs,
			slog.Bool("classified", false), slog.Bool("relevant", false), slog.Bool("stored", false),
			slog.String("error", fmt.Sprintf("Failed to convert to classification input: %v", err)),
			slog.String("error_stage", "conversion"))
		return model.OrchestrationResult{URL: url, Section: section, Extracted: true, Error: fmt.Sprintf("Failed to convert to classification input: %v", err), ErrorStage: "conversion"}, attrs, slog.LevelError
	}

	// Stage 3: classify.
	classifyStart := time.Now()
	classifications, err := s.Classifier.Classify(ctx, input)
	attrs = append(attrs, slog.Float64("classification_duration_ms", msSince(classifyStart)))
	if err != nil {
		attrs = append(attrs,
			slog.Bool("classified", false), slog.Bool("relevant", false), slog.Bool("stored", false),
			slog.String("error", fmt.Sprintf("Failed to classify article: %v", err)),
			slog.String("error_stage", "classification"))
		return model.OrchestrationResult{URL: url, Section: section, Extracted: true, Error: fmt.Sprintf("Failed to classify article: %v", err), ErrorStage: "classification"}, attrs, slog.LevelError
	}
	attrs = append(attrs, slog.Bool("classified", true), slog.Int("classifier_count", len(classifications)))
	classifyDuration := time.Since(classifyStart)
	for _, c := range classifications {
		prefix := strings.ToLower(string(c.ClassifierType))
		attrs = append(attrs,
			slog.Bool(prefix+"_relevant", c.IsRelevant),
			slog.Float64(prefix+"_confidence", c.Confidence),
			slog.String(prefix+"_model", c.ModelName))

		outcome := "not_relevant"
		if c.IsRelevant {
			outcome = "relevant"
		}
		metrics.RecordClassification(string(c.ClassifierType), outcome, classifyDuration)
		metrics.RecordClassificationConfidence(string(c.ClassifierType), c.Confidence)
	}

	// Stage 4: filter.
	relevant := filterRelevant(classifications, minConfidence)
	if len(relevant) == 0 {
		attrs = append(attrs, slog.Bool("relevant", false), slog.Bool("stored", false), slog.Int("relevant_classifiers", 0))
		return model.OrchestrationResult{
			URL: url, Section: section, Extracted: true, Classified: true,
			ClassificationResults: classifications,
		}, attrs, slog.LevelInfo
	}
	attrs = append(attrs, slog.Bool("relevant", true), slog.Int("relevant_classifiers", len(relevant)))

	// Stage 5: normalize entities (non-fatal on failure).
	normStart := time.Now()
	normalized := s.normalizeEntities(ctx, url, section, relevant)
	normDuration := time.Since(normStart)
	metrics.RecordNormalizationDuration(normDuration)
	attrs = append(attrs, slog.Int("entity_count", len(normalized)), slog.Float64("entity_normalization_duration_ms", msSince(normStart)))

	// Stage 6: store.
	storeStart := time.Now()
	stored, err := s.Persistence.StoreArticleWithClassifications(ctx, extracted, url, section, relevant, normalized, newsSourceID, dryRun)
	storeDuration := time.Since(storeStart)
	metrics.RecordStorageDuration(storeDuration)
	attrs = append(attrs, slog.Float64("storage_duration_ms", msSince(storeStart)))
	if err != nil {
		attrs = append(attrs,
			slog.Bool("stored", false),
			slog.String("error", fmt.Sprintf("Failed to store article: %v", err)),
			slog.String("error_stage", "storage"))
		return model.OrchestrationResult{
			URL: url, Section: section, Extracted: true, Classified: true, Relevant: true,
			ClassificationResults: classifications, Error: fmt.Sprintf("Failed to store article: %v", err), ErrorStage: "storage",
		}, attrs, slog.LevelError
	}

	if stored.Stored {
		for _, c := range relevant {
			metrics.RecordArticleStored(string(c.ClassifierType))
		}
	} else {
		metrics.RecordArticleDuplicate()
	}
	attrs = append(attrs, slog.Bool("stored", stored.Stored), slog.Int("classification_count", stored.ClassificationCount))
	if stored.ArticleID != nil {
		attrs = append(attrs, slog.Int64("article_id", *stored.ArticleID))
	}

	level := slog.LevelInfo
	if !stored.Stored {
		level = slog.LevelWarn
	}
	return model.OrchestrationResult{
		URL: url, Section: section, Extracted: true, Classified: true, Relevant: true,
		Stored: stored.Stored, ArticleID: stored.ArticleID, ClassificationCount: stored.ClassificationCount,
		ClassificationResults: classifications,
	}, attrs, level
}

// normalizeEntities collects the union of key entities across the
// relevant classifications and normalizes them. Any failure is logged
// and downgraded to "no entities" rather than blocking storage.
func (s *Service) normalizeEntities(ctx context.Context, url, section string, relevant []model.ClassificationResult) []model.NormalizedEntity {
	seen := make(map[string]struct{})
	var names []string
	for _, c := range relevant {
		for _, e := range model.CleanKeyEntities(c.KeyEntities) {
			if _, ok := seen[e]; !ok {
				seen[e] = struct{}{}
				names = append(names, e)
			}
		}
	}
	if len(names) == 0 {
		return nil
	}

	normalized, err := s.Normalizer.Normalize(ctx, names)
	if err != nil {
		slog.Warn("entity normalization failed, continuing without entities",
			slog.String("url", url), slog.String("section", section), slog.Any("error", err))
		return nil
	}
	return normalized
}

// filterRelevant keeps classifications that are relevant at or above
// minConfidence.
func filterRelevant(results []model.ClassificationResult, minConfidence float64) []model.ClassificationResult {
	out := make([]model.ClassificationResult, 0, len(results))
	for _, r := range results {
		if r.IsRelevant && r.Confidence >= minConfidence {
			out = append(out, r)
		}
	}
	return out
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// isTransient reports whether a fetch error is one the fetcher would
// retry, as opposed to a terminal failure (4xx, redirect-to-base).
func isTransient(err error) bool {
	return !errors.Is(err, apperr.ErrFetchTerminal)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
