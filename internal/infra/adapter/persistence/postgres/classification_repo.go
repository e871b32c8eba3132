package postgres

import (
	"context"
	"fmt"

	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
)

// ClassificationRepo implements repository.ClassificationRepository
// against a caller-supplied connection (pool or transaction).
type ClassificationRepo struct{}

func NewClassificationRepo() repository.ClassificationRepository {
	return &ClassificationRepo{}
}

func (repo *ClassificationRepo) Insert(ctx context.Context, conn repository.Conn, classification model.Classification) (model.Classification, error) {
	const query = `
INSERT INTO classifications
       (article_id, classifier_type, confidence_score, reasoning, classified_at,
        model_name, is_verified, verified_at, verified_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	err := conn.QueryRowContext(ctx, query,
		classification.ArticleID, classification.ClassifierType, classification.ConfidenceScore,
		classification.Reasoning, classification.ClassifiedAt, classification.ModelName,
		classification.IsVerified, classification.VerifiedAt, classification.VerifiedBy,
	).Scan(&classification.ID)
	if err != nil {
		return model.Classification{}, fmt.Errorf("Insert: %w", err)
	}
	return classification, nil
}
