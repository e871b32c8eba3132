package logging

import "context"

// runIDContextKey is the context key under which a batch run's
// correlation ID travels, the pipeline's analogue of the teacher's
// per-HTTP-request ID: one value shared by every canonical log line
// emitted while processing one batch invocation.
type runIDContextKey string

const runIDKey runIDContextKey = "run_id"

// ContextWithRunID returns a context carrying runID for later
// retrieval by RunIDFromContext.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext retrieves the run ID stored by ContextWithRunID,
// or "" if none is set.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}
