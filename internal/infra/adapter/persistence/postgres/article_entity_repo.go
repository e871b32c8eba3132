package postgres

import (
	"context"
	"fmt"

	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
)

// ArticleEntityRepo implements repository.ArticleEntityRepository
// against a caller-supplied connection (pool or transaction).
type ArticleEntityRepo struct{}

func NewArticleEntityRepo() repository.ArticleEntityRepository {
	return &ArticleEntityRepo{}
}

// Link upserts a (articleID, entityID) row. A duplicate-link
// unique-violation on (article_id, entity_id) is swallowed: the link
// already exists, which is the desired end state.
func (repo *ArticleEntityRepo) Link(ctx context.Context, conn repository.Conn, articleID, entityID int64, classifierType model.ClassifierType) error {
	const query = `
INSERT INTO article_entities (article_id, entity_id, classifier_type, created_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (article_id, entity_id) DO NOTHING`
	_, err := conn.ExecContext(ctx, query, articleID, entityID, classifierType)
	if err != nil {
		return fmt.Errorf("Link: %w", err)
	}
	return nil
}
