// Package discovery implements the L11 facade of spec §4.3/§58: run
// one discoverer for a news source and stamp last_scraped_at on
// success.
package discovery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"corruption-watch/internal/observability/metrics"
	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
)

// Discoverer is implemented by both the RSS and archive discoverers:
// each produces the deduplicated article leads for one news source.
type Discoverer interface {
	Discover(ctx context.Context, newsSourceID int64) ([]model.DiscoveredArticle, error)
}

// Service runs a single discoverer against a single news source and
// records the scrape on success, mirroring
// internal/usecase/fetch/service.go's processSingleSource ->
// TouchCrawledAt call shape generalized from "every configured source"
// to "the one discoverer this service was built with".
type Service struct {
	db             *sql.DB
	discoverer     Discoverer
	discovererName string
	sources        repository.NewsSourceRepository
	newsSourceID   int64
}

// NewService builds a discovery facade over one discoverer and the
// news source it discovers for. discovererName ("rss" or "archive")
// labels the metrics this service records.
func NewService(db *sql.DB, discoverer Discoverer, discovererName string, sources repository.NewsSourceRepository, newsSourceID int64) *Service {
	return &Service{db: db, discoverer: discoverer, discovererName: discovererName, sources: sources, newsSourceID: newsSourceID}
}

// Run executes one discovery pass and, only on success, stamps the
// news source's last_scraped_at to now. A discovery failure is
// returned as-is and last_scraped_at is left untouched so a future
// run will retry the same ground.
func (s *Service) Run(ctx context.Context) ([]model.DiscoveredArticle, error) {
	source := strconv.FormatInt(s.newsSourceID, 10)

	start := time.Now()
	articles, err := s.discoverer.Discover(ctx, s.newsSourceID)
	metrics.RecordDiscoveryRun(source, s.discovererName, time.Since(start))
	if err != nil {
		metrics.RecordDiscoveryError(source, discoveryErrorCategory(err))
		return nil, err
	}
	for range articles {
		metrics.RecordArticleDiscovered(source, s.discovererName)
	}

	if _, err := s.sources.UpdateLastScrapedAt(ctx, s.db, s.newsSourceID, time.Now().UTC()); err != nil {
		return articles, fmt.Errorf("%w: update last_scraped_at: %v", apperr.ErrStorage, err)
	}
	return articles, nil
}

// discoveryErrorCategory buckets a discoverer failure for the
// DiscoveryErrorsTotal metric's category label.
func discoveryErrorCategory(err error) string {
	switch {
	case errors.Is(err, apperr.ErrFetchTerminal):
		return "terminal"
	case errors.Is(err, apperr.ErrFetchTransient):
		return "transient"
	case errors.Is(err, apperr.ErrParseError):
		return "parse"
	default:
		return "other"
	}
}
