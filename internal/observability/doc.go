// Package observability provides structured logging and Prometheus
// metrics for the ingestion pipeline.
//
// Subpackages:
//   - logging: structured logging utilities with slog, including the
//     canonical per-article log line's run-ID correlation
//   - metrics: Prometheus counters/histograms for pipeline stages
//
// Example usage:
//
//	import (
//	    "corruption-watch/internal/observability/logging"
//	    "corruption-watch/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("pipeline started")
//
//	    metrics.RecordArticleStored("CORRUPTION")
//	}
package observability
