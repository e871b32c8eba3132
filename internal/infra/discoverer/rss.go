// Package discoverer implements the L3 discoverers of spec §4.3: an
// RSS feed-set discoverer and a date-range archive walker, both
// producing model.DiscoveredArticle.
package discoverer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/resilience/circuitbreaker"
	"corruption-watch/internal/resilience/retry"
)

// FeedSource pairs an RSS/Atom feed URL with the section label applied
// to every article it yields.
type FeedSource struct {
	URL     string
	Section string
}

// RSSDiscoverer discovers articles by polling a configured set of
// feeds. A fetch failure on one feed does not block the others: the
// feed is skipped and discovery continues (spec §4.3).
type RSSDiscoverer struct {
	feeds          []FeedSource
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewRSSDiscoverer builds an RSSDiscoverer over the given feed set,
// sharing one circuit breaker and retry policy across all feeds.
func NewRSSDiscoverer(feeds []FeedSource, client *http.Client) *RSSDiscoverer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RSSDiscoverer{
		feeds:          feeds,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Discover polls every configured feed and returns the combined,
// URL-deduplicated (first occurrence wins) set of discovered articles
// for newsSourceID.
func (d *RSSDiscoverer) Discover(ctx context.Context, newsSourceID int64) ([]model.DiscoveredArticle, error) {
	if newsSourceID <= 0 {
		return nil, fmt.Errorf("%w: news_source_id must be positive, got %d", apperr.ErrInvalidInput, newsSourceID)
	}

	var all []model.DiscoveredArticle
	for _, feed := range d.feeds {
		items, err := d.fetchFeed(ctx, feed.URL)
		if err != nil {
			slog.Warn("rss feed skipped after fetch failure",
				slog.String("feed_url", feed.URL), slog.Any("error", err))
			continue
		}

		now := time.Now().UTC()
		for _, item := range items {
			if item.Link == "" {
				slog.Warn("rss item missing link, skipped", slog.String("feed_url", feed.URL), slog.String("title", item.Title))
				continue
			}

			article := model.DiscoveredArticle{
				URL:          item.Link,
				NewsSourceID: newsSourceID,
				Section:      feed.Section,
				DiscoveredAt: now,
				Title:        item.Title,
			}
			if item.PublishedParsed != nil {
				published := item.PublishedParsed.UTC()
				article.PublishedDate = &published
			}
			all = append(all, article)
		}
	}

	deduped := dedupeByURL(all)
	slog.Info("rss discovery complete",
		slog.Int("feeds", len(d.feeds)), slog.Int("discovered", len(all)), slog.Int("unique", len(deduped)))
	return deduped, nil
}

// fetchFeed retrieves and parses a single feed, retried through the
// shared circuit breaker. A syntactically malformed feed or one whose
// fetch exhausts retries returns an error, which Discover treats as a
// fail-soft skip for that feed alone.
func (d *RSSDiscoverer) fetchFeed(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	var items []*gofeed.Item

	err := retry.WithBackoff(ctx, d.retryConfig, func() error {
		result, err := d.circuitBreaker.Execute(func() (interface{}, error) {
			return d.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("rss circuit breaker open, request rejected", slog.String("feed_url", feedURL))
			}
			return err
		}
		items = result.([]*gofeed.Item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (d *RSSDiscoverer) doFetch(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = "CorruptionWatchBot/1.0"
	parser.Client = d.client

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParseError, err)
	}
	return feed.Items, nil
}

func dedupeByURL(articles []model.DiscoveredArticle) []model.DiscoveredArticle {
	seen := make(map[string]struct{}, len(articles))
	deduped := make([]model.DiscoveredArticle, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		deduped = append(deduped, a)
	}
	return deduped
}
