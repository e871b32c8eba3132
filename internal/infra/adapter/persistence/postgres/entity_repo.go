package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
)

// EntityRepo implements repository.EntityRepository against a
// caller-supplied connection (pool or transaction).
type EntityRepo struct{}

func NewEntityRepo() repository.EntityRepository {
	return &EntityRepo{}
}

func (repo *EntityRepo) FindByNormalizedName(ctx context.Context, conn repository.Conn, normalizedName string) (*model.Entity, error) {
	const query = `
SELECT id, name, normalized_name, created_at
FROM entities
WHERE normalized_name = $1
LIMIT 1`
	var e model.Entity
	err := conn.QueryRowContext(ctx, query, normalizedName).Scan(&e.ID, &e.Name, &e.NormalizedName, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindByNormalizedName: %w", err)
	}
	return &e, nil
}

func (repo *EntityRepo) Insert(ctx context.Context, conn repository.Conn, entity model.Entity) (model.Entity, error) {
	const query = `
INSERT INTO entities (name, normalized_name, created_at)
VALUES ($1, $2, $3)
RETURNING id`
	err := conn.QueryRowContext(ctx, query, entity.Name, entity.NormalizedName, entity.CreatedAt).Scan(&entity.ID)
	if err != nil {
		return model.Entity{}, fmt.Errorf("Insert: %w", err)
	}
	return entity, nil
}

func (repo *EntityRepo) FindEntitiesByArticleID(ctx context.Context, conn repository.Conn, articleID int64) ([]model.Entity, error) {
	const query = `
SELECT e.id, e.name, e.normalized_name, e.created_at
FROM entities e
INNER JOIN article_entities ae ON ae.entity_id = e.id
WHERE ae.article_id = $1`
	rows, err := conn.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("FindEntitiesByArticleID: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entities := make([]model.Entity, 0, 8)
	for rows.Next() {
		var e model.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.NormalizedName, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("FindEntitiesByArticleID: Scan: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

func (repo *EntityRepo) FindArticleIDsByEntityID(ctx context.Context, conn repository.Conn, entityID int64) ([]int64, error) {
	const query = `SELECT article_id FROM article_entities WHERE entity_id = $1`
	rows, err := conn.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("FindArticleIDsByEntityID: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0, 8)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("FindArticleIDsByEntityID: Scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
