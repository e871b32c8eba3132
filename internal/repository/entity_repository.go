package repository

import (
	"context"

	"corruption-watch/internal/pipeline/model"
)

// EntityRepository exposes the operations the persistence service
// and downstream lookups need against the entities table.
type EntityRepository interface {
	// FindByNormalizedName looks up an entity by its unique
	// normalized_name, returning (nil, nil) when no row matches.
	FindByNormalizedName(ctx context.Context, conn Conn, normalizedName string) (*model.Entity, error)

	// Insert persists entity and returns it with its assigned ID.
	Insert(ctx context.Context, conn Conn, entity model.Entity) (model.Entity, error)

	// FindEntitiesByArticleID returns every entity linked to articleID,
	// via article_entities, in no particular order.
	FindEntitiesByArticleID(ctx context.Context, conn Conn, articleID int64) ([]model.Entity, error)

	// FindArticleIDsByEntityID returns every article ID linked to
	// entityID, via article_entities.
	FindArticleIDsByEntityID(ctx context.Context, conn Conn, entityID int64) ([]int64, error)
}
