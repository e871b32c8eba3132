package apperr

// Result is the minimal shape Categorize needs from an orchestration
// outcome. Callers build it by copying the same-named fields of a
// model.OrchestrationResult.
type Result struct {
	Extracted  bool
	Classified bool
	Relevant   bool
	Stored     bool
	Error      string
}

// Categorize buckets an orchestration result into one of
// "none", "extraction", "classification", "storage", or "other", the
// same branching the batch driver uses to tally its four error
// counters.
func Categorize(r Result) string {
	if r.Error == "" {
		return "none"
	}
	switch {
	case !r.Extracted:
		return "extraction"
	case r.Extracted && !r.Classified:
		return "classification"
	case r.Extracted && r.Classified && r.Relevant && !r.Stored:
		return "storage"
	default:
		return "other"
	}
}
