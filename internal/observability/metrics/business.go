package metrics

import "time"

// RecordArticleDiscovered records one candidate URL surfaced by a discoverer.
func RecordArticleDiscovered(source, discoverer string) {
	ArticlesDiscoveredTotal.WithLabelValues(source, discoverer).Inc()
}

// RecordDiscoveryRun records the duration of a discovery pass for a source.
func RecordDiscoveryRun(source, discoverer string, duration time.Duration) {
	DiscoveryDuration.WithLabelValues(source, discoverer).Observe(duration.Seconds())
}

// RecordDiscoveryError records a discovery failure, categorized the same way
// pipeline errors are categorized elsewhere (see pipeline/apperr).
func RecordDiscoveryError(source, category string) {
	DiscoveryErrorsTotal.WithLabelValues(source, category).Inc()
}

// RecordContentFetchSuccess records a successful content fetch operation.
func RecordContentFetchSuccess(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchFailed records a failed content fetch operation.
// transient should be true when the fetcher would retry this class of error.
func RecordContentFetchFailed(duration time.Duration, transient bool) {
	result := "terminal_failure"
	if transient {
		result = "transient_failure"
	}
	ContentFetchAttemptsTotal.WithLabelValues(result).Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordExtractionAttempt records the outcome of one extraction strategy attempt.
func RecordExtractionAttempt(strategy string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	ExtractionAttemptsTotal.WithLabelValues(strategy, result).Inc()
}

// RecordExtractedBodyLength records the rune length of an extracted article body.
func RecordExtractedBodyLength(runeCount int) {
	ExtractedBodyLength.Observe(float64(runeCount))
}

// RecordClassification records the outcome and latency of a classifier call.
// result should be one of "relevant", "not_relevant", or "failure".
func RecordClassification(classifierType, result string, duration time.Duration) {
	ClassificationAttemptsTotal.WithLabelValues(classifierType, result).Inc()
	ClassificationDuration.WithLabelValues(classifierType).Observe(duration.Seconds())
}

// RecordClassificationConfidence observes the confidence score a classifier returned.
func RecordClassificationConfidence(classifierType string, confidence float64) {
	ClassificationConfidence.WithLabelValues(classifierType).Observe(confidence)
}

// RecordEntityCacheLookup records the outcome of one entity cache lookup.
// outcome should be one of "hit", "miss", or "expired".
func RecordEntityCacheLookup(outcome string) {
	EntityCacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// UpdateEntityCacheSize updates the gauge tracking current cache occupancy.
func UpdateEntityCacheSize(size int) {
	EntityCacheSize.Set(float64(size))
}

// RecordNormalizationDuration records the time taken to normalize one batch of mentions.
func RecordNormalizationDuration(duration time.Duration) {
	NormalizationDuration.Observe(duration.Seconds())
}

// RecordArticleStored records a successful article persist for the given classifier type.
func RecordArticleStored(classifierType string) {
	ArticlesStoredTotal.WithLabelValues(classifierType).Inc()
}

// RecordArticleDuplicate records a store skipped because the URL already existed.
func RecordArticleDuplicate() {
	ArticlesDuplicateTotal.Inc()
}

// RecordStorageDuration records the duration of a store-article transaction.
func RecordStorageDuration(duration time.Duration) {
	StorageDuration.Observe(duration.Seconds())
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_article", "insert_article").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// RecordBatchArticleProcessed records one article's terminal outcome within a batch run.
// outcome should be one of "stored", "duplicate", "filtered", or "failed".
func RecordBatchArticleProcessed(outcome string) {
	BatchArticlesProcessedTotal.WithLabelValues(outcome).Inc()
}

// RecordBatchDuration records the wall-clock duration of an entire batch run.
func RecordBatchDuration(duration time.Duration) {
	BatchDuration.Observe(duration.Seconds())
}
