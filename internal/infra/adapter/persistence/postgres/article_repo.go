package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
)

// ArticleRepo implements repository.ArticleRepository against a
// caller-supplied connection (pool or transaction).
type ArticleRepo struct{}

func NewArticleRepo() repository.ArticleRepository {
	return &ArticleRepo{}
}

func (repo *ArticleRepo) Insert(ctx context.Context, conn repository.Conn, article model.Article) (model.Article, error) {
	const query = `
INSERT INTO articles
       (public_id, url, title, section, published_date, fetched_at, full_text, news_source_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := conn.QueryRowContext(ctx, query,
		article.PublicID, article.URL, article.Title, article.Section,
		article.PublishedDate, article.FetchedAt, article.FullText, article.NewsSourceID,
	).Scan(&article.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Article{}, fmt.Errorf("Insert: %w: %w", apperr.ErrDuplicateArticle, err)
		}
		return model.Article{}, fmt.Errorf("Insert: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) GetExistingURLs(ctx context.Context, conn repository.Conn, urls []string) (map[string]struct{}, error) {
	if len(urls) == 0 {
		return map[string]struct{}{}, nil
	}

	const query = `SELECT url FROM articles WHERE url = ANY($1)`
	rows, err := conn.QueryContext(ctx, query, urls)
	if err != nil {
		return nil, fmt.Errorf("GetExistingURLs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	existing := make(map[string]struct{}, len(urls))
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("GetExistingURLs: Scan: %w", err)
		}
		existing[url] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetExistingURLs: rows.Err: %w", err)
	}
	return existing, nil
}

func (repo *ArticleRepo) GetByPublicID(ctx context.Context, conn repository.Conn, publicID string) (*model.Article, error) {
	const query = `
SELECT id, public_id, url, title, section, published_date, fetched_at, full_text, news_source_id
FROM articles
WHERE public_id = $1
LIMIT 1`
	var article model.Article
	err := conn.QueryRowContext(ctx, query, publicID).Scan(
		&article.ID, &article.PublicID, &article.URL, &article.Title, &article.Section,
		&article.PublishedDate, &article.FetchedAt, &article.FullText, &article.NewsSourceID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByPublicID: %w", err)
	}
	return &article, nil
}
