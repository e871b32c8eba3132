// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the pipeline.
//
// Key features:
//   - JSON and text output formats
//   - Batch run ID propagation, for correlating every log line emitted
//     while processing one batch invocation
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "corruption-watch/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("pipeline started", slog.String("version", "1.0"))
//	}
//
//	func processBatch(ctx context.Context) {
//	    logger := logging.WithRunID(ctx, slog.Default())
//	    logger.Info("processing batch")
//	}
package logging
