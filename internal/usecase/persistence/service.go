// Package persistence implements the single transactional entry point
// that turns a classified article into rows across four tables, per
// spec §4.7.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"corruption-watch/internal/observability/metrics"
	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
	"corruption-watch/internal/resilience/circuitbreaker"
	"corruption-watch/internal/resilience/retry"
)

// Service implements StoreArticleWithClassifications over the
// narrow per-entity repositories, against a caller-owned *sql.DB. The
// caller acquires and releases the connection; the service owns only
// the transaction boundary (spec §4.7's "connection lifecycle" split).
type Service struct {
	db             *sql.DB
	articles       repository.ArticleRepository
	classifics     repository.ClassificationRepository
	entities       repository.EntityRepository
	articleEntity  repository.ArticleEntityRepository
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewService builds a persistence service over the given connection
// pool and repositories. Opening the transaction goes through a
// database-tuned circuit breaker and retry policy, since a stuck
// Postgres connection is the one failure mode this service can't
// just roll back and move on from.
func NewService(
	db *sql.DB,
	articles repository.ArticleRepository,
	classifics repository.ClassificationRepository,
	entities repository.EntityRepository,
	articleEntity repository.ArticleEntityRepository,
) *Service {
	return &Service{
		db:             db,
		articles:       articles,
		classifics:     classifics,
		entities:       entities,
		articleEntity:  articleEntity,
		circuitBreaker: circuitbreaker.New(circuitbreaker.DBConfig()),
		retryConfig:    retry.DBConfig(),
	}
}

// StoreArticleWithClassifications runs the full store in one
// transaction: insert article, insert each relevant classification,
// dedupe and find-or-insert entities, link them, commit. A
// unique-violation on the article's URL is a normal, non-error
// "already stored" outcome; any other failure rolls everything back.
// When dryRun is true, every statement still runs against the
// transaction (so the returned result reflects what would have been
// stored, including assigned IDs) but the transaction is always
// rolled back instead of committed, per the batch driver's dry-run
// mode (spec §4.9 step 4).
func (s *Service) StoreArticleWithClassifications(
	ctx context.Context,
	extracted model.ExtractedArticleContent,
	url, section string,
	relevantClassifications []model.ClassificationResult,
	normalizedEntities []model.NormalizedEntity,
	newsSourceID int64,
	dryRun bool,
) (model.ArticleStorageResult, error) {
	if len(relevantClassifications) == 0 {
		return model.ArticleStorageResult{}, fmt.Errorf("%w: relevant_classifications must not be empty", apperr.ErrInvalidInput)
	}

	var tx *sql.Tx
	err := retry.WithBackoff(ctx, s.retryConfig, func() error {
		result, err := s.circuitBreaker.Execute(func() (interface{}, error) {
			return s.db.BeginTx(ctx, nil)
		})
		if err != nil {
			return err
		}
		tx = result.(*sql.Tx)
		return nil
	})
	if err != nil {
		return model.ArticleStorageResult{}, fmt.Errorf("%w: begin transaction: %v", apperr.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	poolStats := s.db.Stats()
	metrics.UpdateDBConnectionStats(poolStats.InUse, poolStats.Idle)

	article := model.Article{
		PublicID:      uuid.New().String(),
		URL:           url,
		Title:         extracted.Title,
		Section:       section,
		PublishedDate: extracted.PublishedDate,
		FetchedAt:     time.Now(),
		FullText:      extracted.FullText,
		NewsSourceID:  newsSourceID,
	}
	insertStart := time.Now()
	article, err = s.articles.Insert(ctx, tx, article)
	metrics.RecordDBQuery("insert_article", time.Since(insertStart))
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicateArticle) {
			return model.ArticleStorageResult{Stored: false}, nil
		}
		return model.ArticleStorageResult{}, fmt.Errorf("%w: insert article: %v", apperr.ErrStorage, err)
	}

	classifications := make([]model.Classification, 0, len(relevantClassifications))
	for _, c := range relevantClassifications {
		classification := model.Classification{
			ArticleID:       article.ID,
			ClassifierType:  c.ClassifierType,
			ConfidenceScore: c.Confidence,
			Reasoning:       c.Reasoning,
			ClassifiedAt:    time.Now(),
			ModelName:       c.ModelName,
		}
		classification, err = s.classifics.Insert(ctx, tx, classification)
		if err != nil {
			return model.ArticleStorageResult{}, fmt.Errorf("%w: insert classification: %v", apperr.ErrStorage, err)
		}
		classifications = append(classifications, classification)
	}

	// All relevant classifications' entities are currently merged
	// under one classifier type on the link row, regardless of which
	// classifier actually produced them (see Open Question decisions
	// in DESIGN.md).
	entities, err := s.linkEntities(ctx, tx, article.ID, normalizedEntities, model.ClassifierCorruption)
	if err != nil {
		return model.ArticleStorageResult{}, err
	}

	if dryRun {
		// Leave the deferred Rollback to run; nothing persists.
	} else if err := tx.Commit(); err != nil {
		return model.ArticleStorageResult{}, fmt.Errorf("%w: commit: %v", apperr.ErrStorage, err)
	}

	articleID := article.ID
	return model.ArticleStorageResult{
		Stored:              true,
		ArticleID:           &articleID,
		ClassificationCount: len(classifications),
		Article:             &article,
		Classifications:     classifications,
		Entities:            entities,
	}, nil
}

// linkEntities deduplicates normalized by NormalizedValue, finds or
// inserts each unique entity, and links it to articleID under
// classifierType.
func (s *Service) linkEntities(
	ctx context.Context,
	tx *sql.Tx,
	articleID int64,
	normalized []model.NormalizedEntity,
	classifierType model.ClassifierType,
) ([]model.Entity, error) {
	seen := make(map[string]struct{}, len(normalized))
	out := make([]model.Entity, 0, len(normalized))

	for _, n := range normalized {
		if _, ok := seen[n.NormalizedValue]; ok {
			continue
		}
		seen[n.NormalizedValue] = struct{}{}

		findStart := time.Now()
		entity, err := s.entities.FindByNormalizedName(ctx, tx, n.NormalizedValue)
		metrics.RecordDBQuery("find_entity", time.Since(findStart))
		if err != nil {
			return nil, fmt.Errorf("%w: find entity: %v", apperr.ErrStorage, err)
		}
		if entity == nil {
			insertStart := time.Now()
			inserted, err := s.entities.Insert(ctx, tx, model.Entity{
				Name:           n.OriginalValue,
				NormalizedName: n.NormalizedValue,
				CreatedAt:      time.Now(),
			})
			metrics.RecordDBQuery("insert_entity", time.Since(insertStart))
			if err != nil {
				return nil, fmt.Errorf("%w: insert entity: %v", apperr.ErrStorage, err)
			}
			entity = &inserted
		}

		if err := s.articleEntity.Link(ctx, tx, articleID, entity.ID, classifierType); err != nil {
			return nil, fmt.Errorf("%w: link entity: %v", apperr.ErrStorage, err)
		}
		out = append(out, *entity)
	}
	return out, nil
}
