// Command discover runs one of the two discoverers of spec §4.3 and
// writes its leads to JSONL. In archive mode it walks a month range,
// writing successful months to gleaner_archive_<year>_<m1>-<m2>.jsonl
// and stub failure records to a parallel …-failures.jsonl, per spec
// §6's "Discoverer output JSONL". In rss mode it polls every feed in
// the sources file once and writes the combined result to one JSONL.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"corruption-watch/internal/config"
	"corruption-watch/internal/infra/adapter/persistence/postgres"
	"corruption-watch/internal/infra/db"
	"corruption-watch/internal/infra/discoverer"
	"corruption-watch/internal/observability/logging"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
	"corruption-watch/internal/usecase/discovery"
)

type cliFlags struct {
	mode         string
	sourcesFile  string
	year         int
	startMonth   int
	endMonth     int
	newsSourceID int64
	outputDir    string
	workers      int
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.mode, "mode", "archive", "discovery mode: archive or rss")
	flag.StringVar(&f.sourcesFile, "sources-file", "", "path to sources.yaml describing the rss feed list and/or archive publication (required)")
	flag.IntVar(&f.year, "year", 0, "calendar year to walk (archive mode, required)")
	flag.IntVar(&f.startMonth, "start-month", 1, "first month of the inclusive range (archive mode, 1-12)")
	flag.IntVar(&f.endMonth, "end-month", 12, "last month of the inclusive range (archive mode, 1-12)")
	flag.Int64Var(&f.newsSourceID, "news-source-id", 0, "news_sources.id every discovered article is attributed to (required)")
	flag.StringVar(&f.outputDir, "output-dir", ".", "directory the output JSONL files are written to")
	flag.IntVar(&f.workers, "workers", 4, "number of months to discover concurrently (archive mode)")
	flag.Parse()
	return f
}

func (f cliFlags) validate() error {
	if f.mode != "archive" && f.mode != "rss" {
		return fmt.Errorf("--mode must be archive or rss, got %q", f.mode)
	}
	if f.sourcesFile == "" {
		return fmt.Errorf("--sources-file is required")
	}
	if f.newsSourceID <= 0 {
		return fmt.Errorf("--news-source-id must be a positive integer")
	}
	if f.mode == "archive" {
		if f.year == 0 {
			return fmt.Errorf("--year is required in archive mode")
		}
		if f.startMonth < 1 || f.startMonth > 12 || f.endMonth < 1 || f.endMonth > 12 {
			return fmt.Errorf("--start-month/--end-month must be between 1 and 12")
		}
		if f.startMonth > f.endMonth {
			return fmt.Errorf("--start-month must not be after --end-month")
		}
		if f.workers < 1 {
			return fmt.Errorf("--workers must be at least 1")
		}
	}
	return nil
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	flags := parseFlags()
	if err := flags.validate(); err != nil {
		logger.Error("invalid arguments", slog.Any("error", err))
		flag.Usage()
		os.Exit(1)
	}

	sources, err := config.LoadSourcesConfig(flags.sourcesFile)
	if err != nil {
		logger.Error("failed to load sources file", slog.Any("error", err))
		os.Exit(1)
	}

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	newsSources := postgres.NewNewsSourceRepo()

	runID := uuid.NewString()
	ctx := logging.ContextWithRunID(context.Background(), runID)
	logger = logging.WithRunID(ctx, logger)
	logger.Info("starting discovery run", slog.String("run_id", runID), slog.String("mode", flags.mode))

	if flags.mode == "rss" {
		err = runRSS(ctx, flags, sources, database, newsSources, logger)
	} else {
		err = runArchive(ctx, flags, sources, database, newsSources, logger)
	}
	if err != nil {
		logger.Error("discovery run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// runRSS polls every feed in sources.RSS once and writes the combined,
// deduplicated result to one JSONL file.
func runRSS(ctx context.Context, flags cliFlags, sources config.SourcesConfig, database *sql.DB, newsSources repository.NewsSourceRepository, logger *slog.Logger) error {
	if len(sources.RSS) == 0 {
		return fmt.Errorf("sources file has no rss feeds configured")
	}

	feeds := make([]discoverer.FeedSource, len(sources.RSS))
	for i, feed := range sources.RSS {
		feeds[i] = discoverer.FeedSource{URL: feed.FeedURL, Section: feed.Section}
	}

	client := &http.Client{Timeout: 30 * time.Second}
	rssDiscoverer := discoverer.NewRSSDiscoverer(feeds, client)
	svc := discovery.NewService(database, rssDiscoverer, "rss", newsSources, flags.newsSourceID)

	articles, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("rss discovery: %w", err)
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	outputPath := filepath.Join(flags.outputDir, fmt.Sprintf("rss_discovery_%s.jsonl", timestamp))
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	for _, article := range articles {
		if err := encoder.Encode(article); err != nil {
			return fmt.Errorf("write article: %w", err)
		}
	}

	logger.Info("rss discovery complete", slog.Int("feeds", len(feeds)), slog.Int("articles", len(articles)), slog.String("output_file", outputPath))
	return nil
}

// runArchive walks flags.startMonth..flags.endMonth of flags.year with
// up to flags.workers months in flight at once, per
// discover_gleaner_archive_articles.py's bounded-worker-pool shape.
func runArchive(ctx context.Context, flags cliFlags, sources config.SourcesConfig, database *sql.DB, newsSources repository.NewsSourceRepository, logger *slog.Logger) error {
	if sources.Archive.BaseURL == "" {
		return fmt.Errorf("sources file has no archive publication configured")
	}
	cfg := discoverer.ArchiveConfig{
		BaseURL:     sources.Archive.BaseURL,
		Publication: sources.Archive.Publication,
		CrawlDelay:  sources.Archive.CrawlDelay,
	}

	articlesPath := filepath.Join(flags.outputDir, fmt.Sprintf("gleaner_archive_%d_%02d-%02d.jsonl", flags.year, flags.startMonth, flags.endMonth))
	failuresPath := filepath.Join(flags.outputDir, fmt.Sprintf("gleaner_archive_%d_%02d-%02d-failures.jsonl", flags.year, flags.startMonth, flags.endMonth))

	articlesFile, err := os.Create(articlesPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = articlesFile.Close() }()

	failuresFile, err := os.Create(failuresPath)
	if err != nil {
		return fmt.Errorf("create failures file: %w", err)
	}
	defer func() { _ = failuresFile.Close() }()

	articlesEncoder := json.NewEncoder(articlesFile)
	failuresEncoder := json.NewEncoder(failuresFile)

	months := make([]int, 0, flags.endMonth-flags.startMonth+1)
	for m := flags.startMonth; m <= flags.endMonth; m++ {
		months = append(months, m)
	}
	results := make([]monthResult, len(months))
	sem := make(chan struct{}, flags.workers)

	var g errgroup.Group
	for i, month := range months {
		i, month := i, month
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			logger.Info("worker started", slog.Int("year", flags.year), slog.Int("month", month))
			articles, err := discoverMonth(ctx, cfg, flags.year, month, flags.newsSourceID, database, newsSources)
			results[i] = monthResult{month: month, articles: articles, err: err}
			return nil
		})
	}
	_ = g.Wait()

	totalArticles, totalFailures := 0, 0
	for _, r := range results {
		if r.err != nil {
			logger.Warn("month discovery failed, writing failure stub",
				slog.Int("year", flags.year), slog.Int("month", r.month), slog.Any("error", r.err))
			if err := failuresEncoder.Encode(failureStub(cfg, flags.year, r.month, flags.newsSourceID)); err != nil {
				return fmt.Errorf("write failure stub: %w", err)
			}
			totalFailures++
			continue
		}

		for _, article := range r.articles {
			if err := articlesEncoder.Encode(article); err != nil {
				return fmt.Errorf("write article: %w", err)
			}
		}
		totalArticles += len(r.articles)
		logger.Info("month discovery complete", slog.Int("year", flags.year), slog.Int("month", r.month), slog.Int("articles", len(r.articles)))
	}

	logger.Info("discovery run complete",
		slog.Int("total_articles", totalArticles), slog.Int("failed_months", totalFailures),
		slog.String("articles_file", articlesPath), slog.String("failures_file", failuresPath))
	return nil
}

// monthResult holds one month worker's outcome, indexed by position so
// output stays in month order regardless of completion order.
type monthResult struct {
	month    int
	articles []model.DiscoveredArticle
	err      error
}

func discoverMonth(ctx context.Context, cfg discoverer.ArchiveConfig, year, month int, newsSourceID int64, database *sql.DB, newsSources repository.NewsSourceRepository) ([]model.DiscoveredArticle, error) {
	d, err := discoverer.ForMonth(cfg, year, month)
	if err != nil {
		return nil, fmt.Errorf("build discoverer: %w", err)
	}
	svc := discovery.NewService(database, d, "archive", newsSources, newsSourceID)
	return svc.Run(ctx)
}

// failureStub builds the stub DiscoveredArticle spec §6 requires for a
// month that failed outright: URL is the month's base archive URL,
// title flags it for retry.
func failureStub(cfg discoverer.ArchiveConfig, year, month int, newsSourceID int64) model.DiscoveredArticle {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	url := fmt.Sprintf("%s/%s/%04d-%02d-01/", base, cfg.Publication, year, month)
	published := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return model.DiscoveredArticle{
		URL:           url,
		NewsSourceID:  newsSourceID,
		Section:       "archive",
		DiscoveredAt:  time.Now().UTC(),
		Title:         fmt.Sprintf("FAILED: %04d-%02d", year, month),
		PublishedDate: &published,
	}
}
