// Package classifier implements the L4 classifier set of spec §4.4:
// LLM-backed classifiers that judge one ClassificationInput against a
// single relevance topic, plus a fan-out service over the set.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

// Classifier judges one article against a single relevance topic.
// Implementations are stateless between calls; the underlying LLM
// client is held and reused across calls for efficiency.
type Classifier interface {
	Classify(ctx context.Context, input model.ClassificationInput) (model.ClassificationResult, error)
	Type() model.ClassifierType
}

// jsonVerdict is the strict JSON shape every classifier prompts its
// model to return.
type jsonVerdict struct {
	IsRelevant  bool     `json:"is_relevant"`
	Confidence  float64  `json:"confidence"`
	Reasoning   string   `json:"reasoning"`
	KeyEntities []string `json:"key_entities"`
}

// parseVerdict decodes a model response into a jsonVerdict, stripping
// a markdown code fence if the model added one despite instructions
// not to.
func parseVerdict(raw string) (jsonVerdict, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var v jsonVerdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return jsonVerdict{}, fmt.Errorf("%w: invalid classifier JSON: %v", apperr.ErrClassifierFailed, err)
	}
	return v, nil
}

func (v jsonVerdict) toResult(classifierType model.ClassifierType, modelName string) model.ClassificationResult {
	return model.ClassificationResult{
		IsRelevant:     v.IsRelevant,
		Confidence:     v.Confidence,
		Reasoning:      v.Reasoning,
		KeyEntities:    model.CleanKeyEntities(v.KeyEntities),
		ClassifierType: classifierType,
		ModelName:      modelName,
	}
}
