package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/repository"
	"corruption-watch/internal/usecase/persistence"
)

type fakeArticleRepo struct {
	insert func(model.Article) (model.Article, error)
}

func (f fakeArticleRepo) Insert(_ context.Context, _ repository.Conn, article model.Article) (model.Article, error) {
	return f.insert(article)
}

func (f fakeArticleRepo) GetExistingURLs(_ context.Context, _ repository.Conn, urls []string) (map[string]struct{}, error) {
	return nil, nil
}

func (f fakeArticleRepo) GetByPublicID(_ context.Context, _ repository.Conn, publicID string) (*model.Article, error) {
	return nil, nil
}

type fakeClassificationRepo struct {
	nextID int64
}

func (f *fakeClassificationRepo) Insert(_ context.Context, _ repository.Conn, c model.Classification) (model.Classification, error) {
	f.nextID++
	c.ID = f.nextID
	return c, nil
}

type fakeEntityRepo struct {
	existing map[string]model.Entity
	nextID   int64
}

func (f *fakeEntityRepo) FindByNormalizedName(_ context.Context, _ repository.Conn, normalizedName string) (*model.Entity, error) {
	if e, ok := f.existing[normalizedName]; ok {
		return &e, nil
	}
	return nil, nil
}

func (f *fakeEntityRepo) Insert(_ context.Context, _ repository.Conn, e model.Entity) (model.Entity, error) {
	f.nextID++
	e.ID = f.nextID
	return e, nil
}

type fakeArticleEntityRepo struct {
	links int
}

func (f *fakeArticleEntityRepo) Link(_ context.Context, _ repository.Conn, articleID, entityID int64, classifierType model.ClassifierType) error {
	f.links++
	return nil
}

func newService(t *testing.T, articles repository.ArticleRepository, classifics repository.ClassificationRepository, entities repository.EntityRepository, articleEntity repository.ArticleEntityRepository) (*persistence.Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := persistence.NewService(db, articles, classifics, entities, articleEntity)
	return svc, mock, func() { _ = db.Close() }
}

func sampleClassification() model.ClassificationResult {
	return model.ClassificationResult{
		ClassifierType: model.ClassifierCorruption,
		IsRelevant:     true,
		Confidence:     0.9,
		ModelName:      "claude-x",
		KeyEntities:    []string{"OCG"},
	}
}

func TestStoreArticleWithClassifications_Success(t *testing.T) {
	classifics := &fakeClassificationRepo{}
	entities := &fakeEntityRepo{existing: map[string]model.Entity{}}
	articleEntity := &fakeArticleEntityRepo{}
	articles := fakeArticleRepo{insert: func(a model.Article) (model.Article, error) {
		a.ID = 42
		return a, nil
	}}

	svc, mock, closeDB := newService(t, articles, classifics, entities, articleEntity)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.StoreArticleWithClassifications(
		context.Background(),
		model.ExtractedArticleContent{Title: "Minister resigns", FullText: "full text here that is long enough"},
		"https://example.com/a", "politics",
		[]model.ClassificationResult{sampleClassification()},
		[]model.NormalizedEntity{{OriginalValue: "OCG", NormalizedValue: "office of the contractor general"}},
		1, false,
	)

	require.NoError(t, err)
	assert.True(t, result.Stored)
	require.NotNil(t, result.ArticleID)
	assert.Equal(t, int64(42), *result.ArticleID)
	assert.Equal(t, 1, result.ClassificationCount)
	assert.Len(t, result.Entities, 1)
	assert.Equal(t, 1, articleEntity.links)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreArticleWithClassifications_DryRunRollsBack(t *testing.T) {
	classifics := &fakeClassificationRepo{}
	entities := &fakeEntityRepo{existing: map[string]model.Entity{}}
	articleEntity := &fakeArticleEntityRepo{}
	articles := fakeArticleRepo{insert: func(a model.Article) (model.Article, error) {
		a.ID = 7
		return a, nil
	}}

	svc, mock, closeDB := newService(t, articles, classifics, entities, articleEntity)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectRollback()

	result, err := svc.StoreArticleWithClassifications(
		context.Background(),
		model.ExtractedArticleContent{Title: "Minister resigns", FullText: "full text here that is long enough"},
		"https://example.com/a", "politics",
		[]model.ClassificationResult{sampleClassification()},
		nil, 1, true,
	)

	require.NoError(t, err)
	assert.True(t, result.Stored)
	assert.Equal(t, int64(7), *result.ArticleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreArticleWithClassifications_DuplicateURL(t *testing.T) {
	classifics := &fakeClassificationRepo{}
	entities := &fakeEntityRepo{existing: map[string]model.Entity{}}
	articleEntity := &fakeArticleEntityRepo{}
	articles := fakeArticleRepo{insert: func(a model.Article) (model.Article, error) {
		return model.Article{}, apperr.ErrDuplicateArticle
	}}

	svc, mock, closeDB := newService(t, articles, classifics, entities, articleEntity)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectRollback()

	result, err := svc.StoreArticleWithClassifications(
		context.Background(),
		model.ExtractedArticleContent{Title: "Minister resigns", FullText: "full text here that is long enough"},
		"https://example.com/a", "politics",
		[]model.ClassificationResult{sampleClassification()},
		nil, 1, false,
	)

	require.NoError(t, err)
	assert.False(t, result.Stored)
	assert.Nil(t, result.ArticleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreArticleWithClassifications_RequiresRelevantClassifications(t *testing.T) {
	svc, mock, closeDB := newService(t, fakeArticleRepo{}, &fakeClassificationRepo{}, &fakeEntityRepo{}, &fakeArticleEntityRepo{})
	defer closeDB()

	_, err := svc.StoreArticleWithClassifications(
		context.Background(),
		model.ExtractedArticleContent{},
		"https://example.com/a", "politics",
		nil, nil, 1, false,
	)

	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreArticleWithClassifications_ReusesExistingEntity(t *testing.T) {
	classifics := &fakeClassificationRepo{}
	entities := &fakeEntityRepo{existing: map[string]model.Entity{
		"office of the contractor general": {ID: 9, Name: "OCG", NormalizedName: "office of the contractor general", CreatedAt: time.Now()},
	}}
	articleEntity := &fakeArticleEntityRepo{}
	articles := fakeArticleRepo{insert: func(a model.Article) (model.Article, error) {
		a.ID = 1
		return a, nil
	}}

	svc, mock, closeDB := newService(t, articles, classifics, entities, articleEntity)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.StoreArticleWithClassifications(
		context.Background(),
		model.ExtractedArticleContent{Title: "t", FullText: "long enough full text body"},
		"https://example.com/a", "politics",
		[]model.ClassificationResult{sampleClassification()},
		[]model.NormalizedEntity{
			{OriginalValue: "OCG", NormalizedValue: "office of the contractor general"},
			{OriginalValue: "ocg", NormalizedValue: "office of the contractor general"},
		},
		1, false,
	)

	require.NoError(t, err)
	require.Len(t, result.Entities, 1, "duplicate normalized entities must collapse to one link")
	assert.Equal(t, int64(9), result.Entities[0].ID)
	assert.Equal(t, 0, entities.nextID, "an existing entity must not be re-inserted")
	assert.NoError(t, mock.ExpectationsWereMet())
}
