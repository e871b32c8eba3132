package repository

import (
	"context"

	"corruption-watch/internal/pipeline/model"
)

// ArticleRepository exposes the narrow set of operations the
// persistence service needs against the articles table. Every method
// takes a caller-supplied connection (see doc.go): the repository owns
// no transaction boundary of its own.
type ArticleRepository interface {
	// Insert persists article and returns it with its assigned ID.
	// A unique-violation on url propagates unwrapped so the caller can
	// detect the duplicate-URL case with errors.Is.
	Insert(ctx context.Context, conn Conn, article model.Article) (model.Article, error)

	// GetExistingURLs returns the subset of urls already present in
	// the table, as a single batch query. Never queried per-URL.
	GetExistingURLs(ctx context.Context, conn Conn, urls []string) (map[string]struct{}, error)

	// GetByPublicID looks up an article by its external public ID,
	// returning (nil, nil) when no row matches.
	GetByPublicID(ctx context.Context, conn Conn, publicID string) (*model.Article, error)
}
