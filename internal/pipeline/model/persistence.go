package model

import "time"

// NewsSource is a crawlable publication. Updated only via
// UpdateLastScrapedAt.
type NewsSource struct {
	ID                int64
	Name              string
	BaseURL           string
	CrawlDelaySeconds int
	IsActive          bool
	LastScrapedAt     *time.Time
	CreatedAt         time.Time
}

// Article is a persisted, fetched news item. Created once by the
// persistence service; never updated by the pipeline afterward.
type Article struct {
	ID            int64
	PublicID      string // UUIDv4, unique
	URL           string // unique
	Title         string
	Section       string
	PublishedDate *time.Time
	FetchedAt     time.Time
	FullText      string
	NewsSourceID  int64
}

// Classification is the persisted verdict of one classifier on one
// article.
type Classification struct {
	ID              int64
	ArticleID       int64
	ClassifierType  ClassifierType
	ConfidenceScore float64
	Reasoning       string
	ClassifiedAt    time.Time
	ModelName       string
	IsVerified      bool
	VerifiedAt      *time.Time
	VerifiedBy      *string
}

// Entity is a canonical named entity, deduplicated by NormalizedName.
type Entity struct {
	ID             int64
	Name           string // display form
	NormalizedName string // unique
	CreatedAt      time.Time
}

// ArticleEntity links an Entity to an Article, tagged with the
// classifier type that is credited with surfacing it. Unique on
// (ArticleID, EntityID).
type ArticleEntity struct {
	ID             int64
	ArticleID      int64
	EntityID       int64
	ClassifierType ClassifierType
	CreatedAt      time.Time
}

// ArticleStorageResult is the outcome of
// StoreArticleWithClassifications. Stored=false with a nil error is
// the normal "duplicate URL" outcome, not a failure.
type ArticleStorageResult struct {
	Stored              bool
	ArticleID           *int64
	ClassificationCount int
	Article             *Article
	Classifications     []Classification
	Entities            []Entity
}
