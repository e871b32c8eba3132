package normalizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/resilience/circuitbreaker"
	"corruption-watch/internal/resilience/retry"
)

// batchModel is a lighter model than the classifiers use: batch
// normalization is a simpler, higher-volume task.
const batchModel = "claude-3-5-haiku-20241022"

const normalizationInstruction = `You normalize Jamaican government and news entity names to a
canonical form, so the same real-world entity always collapses to the
same string across articles.

Rules:
1. Lowercase everything.
2. Strip honorifics and role titles: Mr., Mrs., Hon., Dr., Minister,
   Prime Minister, and similar.
3. Replace spaces with underscores.
4. Preserve full first+last names for people (e.g. "ruel_reid", not
   just "reid").
5. Preserve acronyms as-is, lowercased (e.g. "OCG" -> "ocg", "MOCA" ->
   "moca").
6. Standardize known government entities to their full form (e.g.
   "Min. of Finance" -> "ministry_of_finance").
7. Collapse repeated whitespace before converting to underscores.

Consistency matters more than anything else: the same input must
always normalize to the same output.

Return ONLY a JSON object of this exact shape, no markdown fencing, no
extra text:

{
  "entities": [
    {"original_value": "...", "normalized_value": "...", "confidence": 0.0, "reason": "..."}
  ]
}

Include exactly one entry per input entity, in any order, with
confidence in 0.0-1.0: 0.95-1.0 for an unambiguous name, 0.80-0.94 for
routine title removal, 0.60-0.79 for some ambiguity, below 0.60 for a
genuinely unclear case.`

// AnthropicBatchNormalizer sends every uncached entity from one
// Normalize call through a single Claude prompt, per spec §4.6 step
// 4.
type AnthropicBatchNormalizer struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          string
	timeout        time.Duration
}

// NewAnthropicBatchNormalizer builds the batch normalizer with the
// given Anthropic API key.
func NewAnthropicBatchNormalizer(apiKey string) *AnthropicBatchNormalizer {
	return &AnthropicBatchNormalizer{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		model:          batchModel,
		timeout:        60 * time.Second,
	}
}

type batchVerdict struct {
	Entities []struct {
		OriginalValue   string  `json:"original_value"`
		NormalizedValue string  `json:"normalized_value"`
		Confidence      float64 `json:"confidence"`
		Reason          string  `json:"reason"`
	} `json:"entities"`
}

// NormalizeBatch normalizes every entity in a single LLM call.
func (n *AnthropicBatchNormalizer) NormalizeBatch(ctx context.Context, entities []string) ([]model.NormalizedEntity, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	var result []model.NormalizedEntity
	err := retry.WithBackoff(ctx, n.retryConfig, func() error {
		cbResult, err := n.circuitBreaker.Execute(func() (interface{}, error) {
			return n.doNormalize(ctx, entities)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected", slog.String("service", "entity-normalizer"))
				return fmt.Errorf("%w: claude api unavailable: circuit breaker open", apperr.ErrNormalization)
			}
			return err
		}
		result = cbResult.([]model.NormalizedEntity)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrNormalization, err)
	}
	return result, nil
}

func (n *AnthropicBatchNormalizer) doNormalize(ctx context.Context, entities []string) ([]model.NormalizedEntity, error) {
	quoted := make([]string, len(entities))
	for i, e := range entities {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	prompt := fmt.Sprintf("%s\n\nNormalize these entities: %s", normalizationInstruction, strings.Join(quoted, ", "))

	message, err := n.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(n.model),
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return nil, fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return nil, fmt.Errorf("claude api returned unexpected response type")
	}

	cleaned := strings.TrimSpace(textBlock.Text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var verdict batchVerdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return nil, fmt.Errorf("invalid normalization JSON: %w", err)
	}

	out := make([]model.NormalizedEntity, 0, len(verdict.Entities))
	for _, e := range verdict.Entities {
		out = append(out, model.NormalizedEntity{
			OriginalValue:   e.OriginalValue,
			NormalizedValue: e.NormalizedValue,
			Confidence:      e.Confidence,
			Reason:          e.Reason,
		})
	}
	return out, nil
}
