package repository

import (
	"context"
	"time"

	"corruption-watch/internal/pipeline/model"
)

// NewsSourceRepository exposes the operations the discovery service
// needs against the news_sources table.
type NewsSourceRepository interface {
	// Insert persists source and returns it with its assigned ID.
	Insert(ctx context.Context, conn Conn, source model.NewsSource) (model.NewsSource, error)

	// UpdateLastScrapedAt is the only permitted mutation of an existing
	// NewsSource row; it stamps last_scraped_at and returns the updated row.
	UpdateLastScrapedAt(ctx context.Context, conn Conn, id int64, t time.Time) (model.NewsSource, error)
}
