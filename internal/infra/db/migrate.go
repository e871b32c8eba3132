package db

import (
	"database/sql"
)

// MigrateUp creates the pipeline's schema: news_sources, articles,
// classifications, entities, and article_entities, per spec §3/§6.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS news_sources (
    id                  SERIAL PRIMARY KEY,
    name                TEXT NOT NULL UNIQUE,
    base_url            TEXT NOT NULL,
    crawl_delay_seconds INTEGER NOT NULL DEFAULT 1,
    is_active           BOOLEAN NOT NULL DEFAULT TRUE,
    last_scraped_at     TIMESTAMPTZ,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id              SERIAL PRIMARY KEY,
    public_id       UUID NOT NULL UNIQUE,
    url             TEXT NOT NULL UNIQUE,
    title           TEXT NOT NULL,
    section         TEXT NOT NULL,
    published_date  TIMESTAMPTZ,
    fetched_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    full_text       TEXT,
    news_source_id  INTEGER NOT NULL REFERENCES news_sources(id) ON DELETE RESTRICT
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS classifications (
    id                SERIAL PRIMARY KEY,
    article_id        INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    classifier_type   VARCHAR(32) NOT NULL,
    confidence_score  DOUBLE PRECISION NOT NULL,
    reasoning         TEXT,
    classified_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    model_name        TEXT NOT NULL,
    is_verified       BOOLEAN NOT NULL DEFAULT FALSE,
    verified_at       TIMESTAMPTZ,
    verified_by       TEXT
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS entities (
    id               SERIAL PRIMARY KEY,
    name             TEXT NOT NULL,
    normalized_name  TEXT NOT NULL UNIQUE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS article_entities (
    id               SERIAL PRIMARY KEY,
    article_id       INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    entity_id        INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    classifier_type  VARCHAR(32) NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(article_id, entity_id)
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_public_id ON articles(public_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_news_source_id ON articles(news_source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_date ON articles(published_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_classifications_article_id ON classifications(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_article_entities_article_id ON article_entities(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_article_entities_entity_id ON article_entities(entity_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown drops the pipeline's schema in dependency order.
// Use with caution: this deletes all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS article_entities CASCADE`,
		`DROP TABLE IF EXISTS entities CASCADE`,
		`DROP TABLE IF EXISTS classifications CASCADE`,
		`DROP TABLE IF EXISTS articles CASCADE`,
		`DROP TABLE IF EXISTS news_sources CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
