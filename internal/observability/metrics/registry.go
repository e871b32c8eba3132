// Package metrics provides centralized Prometheus metrics for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Discovery metrics track how many candidate articles are surfaced by
// feed and archive discoverers.
var (
	// ArticlesDiscoveredTotal counts candidate URLs surfaced per source and discoverer kind.
	ArticlesDiscoveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_discovered_total",
			Help: "Total number of candidate articles surfaced by discoverers",
		},
		[]string{"source", "discoverer"}, // discoverer: rss, archive
	)

	// DiscoveryDuration measures time spent in a single discovery run.
	DiscoveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_duration_seconds",
			Help:    "Time taken to run a discovery pass for a source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source", "discoverer"},
	)

	// DiscoveryErrorsTotal counts discovery failures by source and error category.
	DiscoveryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_errors_total",
			Help: "Total number of discovery errors",
		},
		[]string{"source", "category"},
	)
)

// Extraction metrics track content-fetch and content-extraction outcomes.
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result.
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, terminal_failure, transient_failure
	)

	// ContentFetchDuration measures time to fetch a raw article page.
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content over HTTP",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ExtractionAttemptsTotal counts extraction attempts by strategy and result.
	ExtractionAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_attempts_total",
			Help: "Total number of content extraction attempts",
		},
		[]string{"strategy", "result"}, // strategy: caller-supplied; the orchestrator records "primary"
	)

	// ExtractedBodyLength measures extracted article body length in runes.
	ExtractedBodyLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "extracted_body_length_runes",
			Help: "Length of extracted article body text in runes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800, 25600, 51200,
			},
		},
	)
)

// Classification metrics track calls to the LLM-backed classifiers.
var (
	// ClassificationAttemptsTotal counts classifier calls by classifier type and result.
	ClassificationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classification_attempts_total",
			Help: "Total number of classifier invocations",
		},
		[]string{"classifier_type", "result"}, // result: relevant, not_relevant, failure
	)

	// ClassificationDuration measures classifier call latency.
	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classification_duration_seconds",
			Help:    "Time taken for a classifier invocation to complete",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"classifier_type"},
	)

	// ClassificationConfidence observes the confidence score returned by classifiers.
	ClassificationConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classification_confidence",
			Help:    "Confidence score returned by a classifier",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"classifier_type"},
	)
)

// Normalization metrics track entity normalization and its cache.
var (
	// EntityCacheLookupsTotal counts entity cache lookups by outcome.
	EntityCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_cache_lookups_total",
			Help: "Total number of entity normalization cache lookups",
		},
		[]string{"outcome"}, // outcome: hit, miss, expired
	)

	// EntityCacheSize tracks the current number of entries held in the cache.
	EntityCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "entity_cache_size",
			Help: "Current number of entries in the entity normalization cache",
		},
	)

	// NormalizationDuration measures time spent normalizing one batch of entity mentions.
	NormalizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "normalization_duration_seconds",
			Help:    "Time taken to normalize a batch of entity mentions",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

// Storage metrics track the persistence layer.
var (
	// ArticlesStoredTotal counts successful article stores by classifier type.
	ArticlesStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_stored_total",
			Help: "Total number of articles persisted",
		},
		[]string{"classifier_type"},
	)

	// ArticlesDuplicateTotal counts stores skipped because the URL already existed.
	ArticlesDuplicateTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_duplicate_total",
			Help: "Total number of article stores skipped due to a pre-existing URL",
		},
	)

	// StorageDuration measures the duration of the store-article transaction.
	StorageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storage_duration_seconds",
			Help:    "Time taken to persist an article with its classifications and entities",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	// DBQueryDuration measures individual database query duration.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections.
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections.
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// Batch driver metrics track the overall progress of a batch run.
var (
	// BatchArticlesProcessedTotal counts articles processed by a batch run, by outcome.
	BatchArticlesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_articles_processed_total",
			Help: "Total number of articles processed by batch runs",
		},
		[]string{"outcome"}, // outcome: stored, duplicate, filtered, failed
	)

	// BatchDuration measures the wall-clock duration of an entire batch run.
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_duration_seconds",
			Help:    "Wall-clock duration of a batch run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)
