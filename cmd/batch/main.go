// Command batch runs the offline batch driver of spec §4.9: read a
// JSONL file of discovered articles, run each through the
// orchestration pipeline with bounded concurrency, and write a
// summary report plus a per-error JSONL under --output-dir.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"corruption-watch/internal/config"
	"corruption-watch/internal/infra/adapter/persistence/postgres"
	"corruption-watch/internal/infra/classifier"
	"corruption-watch/internal/infra/db"
	"corruption-watch/internal/infra/extractor"
	"corruption-watch/internal/infra/fetcher"
	"corruption-watch/internal/infra/normalizer"
	"corruption-watch/internal/observability/logging"
	"corruption-watch/internal/repository"
	"corruption-watch/internal/usecase/batch"
	"corruption-watch/internal/usecase/orchestration"
	"corruption-watch/internal/usecase/persistence"
)

type cliFlags struct {
	input         string
	sourcesFile   string
	concurrency   int
	skipExisting  bool
	dryRun        bool
	minConfidence float64
	outputDir     string
}

func parseFlags(defaults config.PipelineConfig) cliFlags {
	var f cliFlags
	flag.StringVar(&f.input, "input", "", "path to a JSONL file of discovered articles (required)")
	flag.StringVar(&f.sourcesFile, "sources-file", "", "path to the sources.yaml that named the hosts in --input, used to register the per-host extractor strategy list (required)")
	flag.IntVar(&f.concurrency, "concurrency", defaults.DefaultConcurrency, "number of articles to process concurrently (1-10)")
	flag.BoolVar(&f.skipExisting, "skip-existing", false, "filter out articles whose URL is already stored before processing")
	flag.BoolVar(&f.dryRun, "dry-run", false, "run the full pipeline but roll back every storage transaction")
	flag.Float64Var(&f.minConfidence, "min-confidence", defaults.MinConfidence, "minimum classifier confidence to treat a result as relevant (0-1)")
	flag.StringVar(&f.outputDir, "output-dir", ".", "directory under which batch_results/ reports are written")
	flag.Parse()
	return f
}

func (f cliFlags) validate() error {
	if f.input == "" {
		return fmt.Errorf("--input is required")
	}
	if _, err := os.Stat(f.input); err != nil {
		return fmt.Errorf("--input: %w", err)
	}
	if f.sourcesFile == "" {
		return fmt.Errorf("--sources-file is required")
	}
	if f.concurrency < 1 || f.concurrency > 10 {
		return fmt.Errorf("--concurrency must be between 1 and 10, got %d", f.concurrency)
	}
	if f.minConfidence < 0 || f.minConfidence > 1 {
		return fmt.Errorf("--min-confidence must be between 0 and 1, got %v", f.minConfidence)
	}
	return nil
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	pipelineDefaults, err := config.LoadPipelineConfig()
	if err != nil {
		logger.Warn("failed to load pipeline config, using built-in defaults", slog.Any("error", err))
		pipelineDefaults = config.DefaultPipelineConfig()
	}

	flags := parseFlags(pipelineDefaults)
	if err := flags.validate(); err != nil {
		logger.Error("invalid arguments", slog.Any("error", err))
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flags, logger); err != nil {
		logger.Error("batch run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(flags cliFlags, logger *slog.Logger) error {
	runID := uuid.NewString()
	ctx := logging.ContextWithRunID(context.Background(), runID)
	logger = logging.WithRunID(ctx, logger)
	logger.Info("starting batch run", slog.String("run_id", runID))

	file, err := os.Open(flags.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	articles, err := batch.LoadJSONL(file)
	_ = file.Close()
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}
	logger.Info("loaded articles", slog.Int("count", len(articles)), slog.String("input", flags.input))

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	articleRepo := postgres.NewArticleRepo()
	classificationRepo := postgres.NewClassificationRepo()
	entityRepo := postgres.NewEntityRepo()
	articleEntityRepo := postgres.NewArticleEntityRepo()

	skipped := 0
	if flags.skipExisting {
		filtered, n, err := batch.FilterExistingURLs(articles, dbURLLookup{db: database, repo: articleRepo})
		if err != nil {
			return fmt.Errorf("filter existing urls: %w", err)
		}
		articles = filtered
		skipped = n
		logger.Info("filtered already-stored articles", slog.Int("skipped", skipped), slog.Int("remaining", len(articles)))
	}

	sources, err := config.LoadSourcesConfig(flags.sourcesFile)
	if err != nil {
		return fmt.Errorf("load sources config: %w", err)
	}

	orchestrator, cleanup, err := buildOrchestrator(database, articleRepo, classificationRepo, entityRepo, articleEntityRepo, sources, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer cleanup()

	stats := batch.NewStatistics(len(articles))
	stats.SetSkippedExisting(skipped)

	done := make(chan struct{})
	go batch.RunLiveProgress(done, stats, func(snap batch.Snapshot) {
		fmt.Fprintf(os.Stderr, "\rprocessed %d/%d (stored=%d relevant=%d errors=%d) %.1f articles/s",
			snap.Processed, snap.Total, snap.Stored, snap.Relevant,
			snap.ExtractionErrors+snap.ClassificationErrors+snap.StorageErrors+snap.OtherErrors,
			snap.ArticlesPerSecond)
	})

	opts := batch.Options{Concurrency: flags.concurrency, MinConfidence: flags.minConfidence, DryRun: flags.dryRun}
	results := batch.ProcessConcurrent(ctx, articles, orchestrator, stats, opts)
	close(done)
	fmt.Fprintln(os.Stderr)

	timestamp := time.Now().UTC().Format("20060102_150405")
	summaryPath, err := batch.WriteSummaryReport(flags.outputDir, timestamp, stats.Snapshot(), batch.ReportMetadata{
		InputFile:     flags.input,
		Concurrency:   flags.concurrency,
		MinConfidence: flags.minConfidence,
		SkipExisting:  flags.skipExisting,
		DryRun:        flags.dryRun,
	})
	if err != nil {
		return fmt.Errorf("write summary report: %w", err)
	}
	logger.Info("wrote summary report", slog.String("path", summaryPath))

	errorPath, err := batch.WriteErrorReport(flags.outputDir, timestamp, results)
	if err != nil {
		return fmt.Errorf("write error report: %w", err)
	}
	if errorPath != "" {
		logger.Info("wrote error report", slog.String("path", errorPath))
	}

	return nil
}

// dbURLLookup adapts the narrow ArticleRepository.GetExistingURLs
// method to batch.URLLookup's pool-level signature.
type dbURLLookup struct {
	db   *sql.DB
	repo repository.ArticleRepository
}

func (l dbURLLookup) ExistingURLs(urls []string) (map[string]struct{}, error) {
	return l.repo.GetExistingURLs(context.Background(), l.db, urls)
}

// buildOrchestrator wires the fetcher, extractor, classifier set,
// entity normalizer, and persistence service into one
// orchestration.Service.
func buildOrchestrator(
	database *sql.DB,
	articleRepo repository.ArticleRepository,
	classificationRepo repository.ClassificationRepository,
	entityRepo repository.EntityRepository,
	articleEntityRepo repository.ArticleEntityRepository,
	sources config.SourcesConfig,
	logger *slog.Logger,
) (*orchestration.Service, func(), error) {
	fetchConfig, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load fetch config: %w", err)
	}
	httpFetcher := fetcher.New(fetchConfig)

	contentExtractor := extractor.New()
	for _, host := range sourceHosts(sources) {
		contentExtractor.Register(host,
			extractor.StructuredDataStrategy{BodySelector: "div.article--body p"},
			extractor.DefaultCSSStrategy(),
			extractor.ReadabilityStrategy{},
		)
	}

	classifierConfig, err := config.LoadClassifierConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load classifier config: %w", err)
	}
	var classifiers []classifier.Classifier
	if classifierConfig.AnthropicAPIKey != "" {
		classifiers = append(classifiers, classifier.NewAnthropicClassifier(classifierConfig.AnthropicAPIKey))
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, CORRUPTION classifier disabled")
	}
	if classifierConfig.OpenAIAPIKey != "" {
		classifiers = append(classifiers, classifier.NewOpenAIClassifier(classifierConfig.OpenAIAPIKey))
	} else {
		logger.Warn("OPENAI_API_KEY not set, HURRICANE_RELIEF classifier disabled")
	}
	classifierService := classifier.NewService(classifiers...)

	cacheConfig, err := config.LoadCacheConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load cache config: %w", err)
	}
	entityCache := normalizer.GetEntityCache(cacheConfig.MaxSize, cacheConfig.TTL)
	var batchNormalizer normalizer.BatchNormalizer
	if classifierConfig.AnthropicAPIKey != "" {
		batchNormalizer = normalizer.NewAnthropicBatchNormalizer(classifierConfig.AnthropicAPIKey)
	}
	normalizerService := normalizer.NewService(entityCache, batchNormalizer)

	persistenceService := persistence.NewService(database, articleRepo, classificationRepo, entityRepo, articleEntityRepo)

	svc := orchestration.NewService(httpFetcher, contentExtractor, classifierService, normalizerService, persistenceService)

	cleanup := func() {}
	return svc, cleanup, nil
}

// sourceHosts returns the deduplicated set of hosts named by sources,
// the only hosts the extractor registers a per-host strategy list for.
// A URL whose host isn't in this set surfaces apperr.ErrUnsupportedDomain.
func sourceHosts(sources config.SourcesConfig) []string {
	seen := make(map[string]struct{})
	var hosts []string
	add := func(rawURL string) {
		if rawURL == "" {
			return
		}
		parsed, err := url.Parse(rawURL)
		if err != nil || parsed.Host == "" {
			return
		}
		if _, ok := seen[parsed.Host]; ok {
			return
		}
		seen[parsed.Host] = struct{}{}
		hosts = append(hosts, parsed.Host)
	}
	for _, feed := range sources.RSS {
		add(feed.FeedURL)
	}
	add(sources.Archive.BaseURL)
	return hosts
}

var _ batch.Orchestrator = (*orchestration.Service)(nil)
