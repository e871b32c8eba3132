package normalizer

import (
	"context"
	"fmt"
	"log/slog"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

// BatchNormalizer normalizes a batch of entity names with a single
// call, used for whatever the cache does not already have an answer
// for.
type BatchNormalizer interface {
	NormalizeBatch(ctx context.Context, entities []string) ([]model.NormalizedEntity, error)
}

// Service implements the cache-then-batch-LLM normalization algorithm
// of spec §4.6: cached entities are returned without touching the LLM
// at all, and only the uncached remainder goes through one batch call.
type Service struct {
	cache *Cache
	batch BatchNormalizer
}

// NewService builds a normalization service over the given cache and
// batch normalizer.
func NewService(cache *Cache, batch BatchNormalizer) *Service {
	return &Service{cache: cache, batch: batch}
}

// Normalize resolves every entity in names to its NormalizedEntity, in
// the same order as names. A cache failure degrades to treating every
// name as a miss rather than failing the call (spec §4.6 step 2). An
// empty names is rejected as invalid input.
func (s *Service) Normalize(ctx context.Context, names []string) ([]model.NormalizedEntity, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: names must not be empty", apperr.ErrInvalidInput)
	}

	cached := s.lookupCache(names)

	var uncachedNames []string
	for _, name := range names {
		if _, ok := cached[name]; !ok {
			uncachedNames = append(uncachedNames, name)
		}
	}

	if len(uncachedNames) == 0 {
		return assembleInOrder(names, cached), nil
	}

	newEntities, err := s.batch.NormalizeBatch(ctx, uncachedNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrNormalization, err)
	}

	byOriginal := make(map[string]model.NormalizedEntity, len(newEntities))
	for _, e := range newEntities {
		byOriginal[e.OriginalValue] = e
		cached[e.OriginalValue] = e
	}
	s.storeCache(byOriginal)

	return assembleInOrder(names, cached), nil
}

// lookupCache fetches every name from the cache, recovering from any
// panic raised by the cache itself and treating the batch as a total
// miss rather than propagating the failure (spec §4.6 step 2).
func (s *Service) lookupCache(names []string) (result map[string]model.NormalizedEntity) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("entity cache lookup failed, treating batch as a miss",
				slog.Any("panic", r))
			result = make(map[string]model.NormalizedEntity)
		}
	}()
	return s.cache.GetMany(names)
}

// storeCache writes newly normalized entities back into the cache,
// logging and swallowing any failure rather than failing the call.
func (s *Service) storeCache(entities map[string]model.NormalizedEntity) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("entity cache write failed, continuing without caching",
				slog.Any("panic", r))
		}
	}()
	s.cache.SetMany(entities)
}

// assembleInOrder zips cached results back into the caller's original
// ordering. Any name missing from results (should not happen once the
// batch call has run) falls back to an identity mapping so the output
// slice always has one entry per input name.
func assembleInOrder(names []string, results map[string]model.NormalizedEntity) []model.NormalizedEntity {
	out := make([]model.NormalizedEntity, len(names))
	for i, name := range names {
		if entity, ok := results[name]; ok {
			out[i] = entity
			continue
		}
		out[i] = model.NormalizedEntity{
			OriginalValue:   name,
			NormalizedValue: model.NormalizeKey(name),
			Confidence:      0,
			Reason:          "normalization unavailable, using identity fallback",
		}
	}
	return out
}
