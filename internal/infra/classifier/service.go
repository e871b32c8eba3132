package classifier

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"corruption-watch/internal/pipeline/model"
)

// Service fans a ClassificationInput out to every configured
// classifier in parallel, per spec §4.4.
type Service struct {
	classifiers []Classifier
}

// NewService builds a Service over the given classifier set. An empty
// set is valid: Classify on it returns an empty slice immediately.
func NewService(classifiers ...Classifier) *Service {
	return &Service{classifiers: classifiers}
}

// Classify runs every classifier concurrently via an errgroup.Group
// and joins on all of them before returning. Each goroutine handles
// its own classifier's error locally (logged with classifier type and
// input URL, then omitted from the result) rather than returning it
// to the group, so one classifier's failure never cancels or shortens
// the others — matching the service's join-all semantics rather than
// errgroup's default abort-on-first-error behavior.
func (s *Service) Classify(ctx context.Context, input model.ClassificationInput) ([]model.ClassificationResult, error) {
	if len(s.classifiers) == 0 {
		return []model.ClassificationResult{}, nil
	}

	results := make([]*model.ClassificationResult, len(s.classifiers))

	var g errgroup.Group
	for i, c := range s.classifiers {
		i, c := i, c
		g.Go(func() error {
			result, err := c.Classify(ctx, input)
			if err != nil {
				slog.Warn("classifier failed, omitting from result",
					slog.String("classifier_type", string(c.Type())),
					slog.String("url", input.URL),
					slog.Any("error", err))
				return nil
			}
			results[i] = &result
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.ClassificationResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}
