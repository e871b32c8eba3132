package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	pg "corruption-watch/internal/infra/adapter/persistence/postgres"
	"corruption-watch/internal/pipeline/model"
)

func TestNewsSourceRepo_Insert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	source := model.NewsSource{
		Name: "Daily Gazette", BaseURL: "https://example.com",
		CrawlDelaySeconds: 5, IsActive: true, CreatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO news_sources")).
		WithArgs(source.Name, source.BaseURL, source.CrawlDelaySeconds,
			source.IsActive, source.LastScrapedAt, source.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	repo := pg.NewNewsSourceRepo()
	got, err := repo.Insert(context.Background(), db, source)
	if err != nil {
		t.Fatalf("Insert err=%v", err)
	}
	if got.ID != 3 {
		t.Fatalf("ID = %d, want 3", got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestNewsSourceRepo_UpdateLastScrapedAt(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 7, 19, 12, 0, 0, 0, time.UTC)
	want := model.NewsSource{
		ID: 3, Name: "Daily Gazette", BaseURL: "https://example.com",
		CrawlDelaySeconds: 5, IsActive: true, LastScrapedAt: &now, CreatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE news_sources SET last_scraped_at")).
		WithArgs(now, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "base_url", "crawl_delay_seconds", "is_active", "last_scraped_at", "created_at",
		}).AddRow(want.ID, want.Name, want.BaseURL, want.CrawlDelaySeconds, want.IsActive, want.LastScrapedAt, want.CreatedAt))

	repo := pg.NewNewsSourceRepo()
	got, err := repo.UpdateLastScrapedAt(context.Background(), db, 3, now)
	if err != nil {
		t.Fatalf("UpdateLastScrapedAt err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
