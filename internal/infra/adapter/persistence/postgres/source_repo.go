package postgres

import (
	"context"
	"fmt"
	"time"

	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
)

// NewsSourceRepo implements repository.NewsSourceRepository against a
// caller-supplied connection (pool or transaction).
type NewsSourceRepo struct{}

func NewNewsSourceRepo() repository.NewsSourceRepository {
	return &NewsSourceRepo{}
}

func (repo *NewsSourceRepo) Insert(ctx context.Context, conn repository.Conn, source model.NewsSource) (model.NewsSource, error) {
	const query = `
INSERT INTO news_sources (name, base_url, crawl_delay_seconds, is_active, last_scraped_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err := conn.QueryRowContext(ctx, query,
		source.Name, source.BaseURL, source.CrawlDelaySeconds, source.IsActive,
		source.LastScrapedAt, source.CreatedAt,
	).Scan(&source.ID)
	if err != nil {
		return model.NewsSource{}, fmt.Errorf("Insert: %w", err)
	}
	return source, nil
}

func (repo *NewsSourceRepo) UpdateLastScrapedAt(ctx context.Context, conn repository.Conn, id int64, t time.Time) (model.NewsSource, error) {
	const query = `
UPDATE news_sources SET last_scraped_at = $1
WHERE id = $2
RETURNING id, name, base_url, crawl_delay_seconds, is_active, last_scraped_at, created_at`
	var source model.NewsSource
	err := conn.QueryRowContext(ctx, query, t, id).Scan(
		&source.ID, &source.Name, &source.BaseURL, &source.CrawlDelaySeconds,
		&source.IsActive, &source.LastScrapedAt, &source.CreatedAt,
	)
	if err != nil {
		return model.NewsSource{}, fmt.Errorf("UpdateLastScrapedAt: %w", err)
	}
	return source, nil
}
