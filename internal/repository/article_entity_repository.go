package repository

import (
	"context"

	"corruption-watch/internal/pipeline/model"
)

// ArticleEntityRepository exposes the operations the persistence
// service needs against the article_entities junction table.
type ArticleEntityRepository interface {
	// Link upserts a (articleID, entityID) row tagged with
	// classifierType. A duplicate-link unique-violation is swallowed by
	// the implementation, not propagated: the persistence service relies
	// on Link being idempotent for a given pair.
	Link(ctx context.Context, conn Conn, articleID, entityID int64, classifierType model.ClassifierType) error
}
