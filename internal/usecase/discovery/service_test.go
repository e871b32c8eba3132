package discovery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
	"corruption-watch/internal/usecase/discovery"
)

type stubDiscoverer struct {
	articles []model.DiscoveredArticle
	err      error
}

func (s stubDiscoverer) Discover(_ context.Context, _ int64) ([]model.DiscoveredArticle, error) {
	return s.articles, s.err
}

type fakeSourceRepo struct {
	updated   bool
	updatedID int64
}

func (f *fakeSourceRepo) Insert(_ context.Context, _ repository.Conn, source model.NewsSource) (model.NewsSource, error) {
	return source, nil
}

func (f *fakeSourceRepo) UpdateLastScrapedAt(_ context.Context, _ repository.Conn, id int64, t time.Time) (model.NewsSource, error) {
	f.updated = true
	f.updatedID = id
	return model.NewsSource{ID: id, LastScrapedAt: &t}, nil
}

func TestService_Run_StampsLastScrapedOnSuccess(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sources := &fakeSourceRepo{}
	published := time.Now()
	svc := discovery.NewService(db, stubDiscoverer{articles: []model.DiscoveredArticle{
		{URL: "https://example.com/a", NewsSourceID: 1, Section: "politics", DiscoveredAt: time.Now(), PublishedDate: &published},
	}}, "rss", sources, 1)

	articles, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Len(t, articles, 1)
	assert.True(t, sources.updated)
	assert.Equal(t, int64(1), sources.updatedID)
}

func TestService_Run_DiscoveryFailureLeavesLastScrapedUntouched(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sources := &fakeSourceRepo{}
	svc := discovery.NewService(db, stubDiscoverer{err: apperr.ErrFetchTransient}, "archive", sources, 2)

	articles, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrFetchTransient)
	assert.Nil(t, articles)
	assert.False(t, sources.updated, "a failed discovery pass must not stamp last_scraped_at")
}

func TestService_Run_UpdateFailurePropagatesButKeepsArticles(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sources := &failingSourceRepo{err: errors.New("connection refused")}
	svc := discovery.NewService(db, stubDiscoverer{articles: []model.DiscoveredArticle{
		{URL: "https://example.com/a", NewsSourceID: 3, Section: "politics", DiscoveredAt: time.Now()},
	}}, "rss", sources, 3)

	articles, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrStorage)
	assert.Len(t, articles, 1, "the discovered leads should still be returned even if the stamp fails")
}

type failingSourceRepo struct {
	err error
}

func (f *failingSourceRepo) Insert(_ context.Context, _ repository.Conn, source model.NewsSource) (model.NewsSource, error) {
	return source, nil
}

func (f *failingSourceRepo) UpdateLastScrapedAt(_ context.Context, _ repository.Conn, id int64, t time.Time) (model.NewsSource, error) {
	return model.NewsSource{}, f.err
}
