package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/resilience/circuitbreaker"
	"corruption-watch/internal/resilience/retry"
)

// AnthropicModel is the Claude model used for the CORRUPTION
// classifier.
const AnthropicModel = anthropic.ModelClaudeSonnet4_5_20250929

// AnthropicClassifier judges CORRUPTION relevance using Anthropic's
// Claude API. It holds one client and one circuit breaker, reused
// across calls, per spec §4.4's "reusable LLM runner" requirement.
type AnthropicClassifier struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          string
	maxTokens      int
	timeout        time.Duration
}

// NewAnthropicClassifier builds the CORRUPTION classifier with the
// given Anthropic API key.
func NewAnthropicClassifier(apiKey string) *AnthropicClassifier {
	return &AnthropicClassifier{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		model:          string(AnthropicModel),
		maxTokens:      1024,
		timeout:        60 * time.Second,
	}
}

func (c *AnthropicClassifier) Type() model.ClassifierType {
	return model.ClassifierCorruption
}

// Classify runs the corruption-relevance prompt through Claude, with
// circuit breaking and retry identical in shape to the HTTP fetcher's.
func (c *AnthropicClassifier) Classify(ctx context.Context, input model.ClassificationInput) (model.ClassificationResult, error) {
	if err := input.Validate(); err != nil {
		return model.ClassificationResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result model.ClassificationResult
	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doClassify(ctx, input)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("classifier", string(c.Type())), slog.String("url", input.URL))
				return fmt.Errorf("%w: claude api unavailable: circuit breaker open", apperr.ErrClassifierFailed)
			}
			return err
		}
		result = cbResult.(model.ClassificationResult)
		return nil
	})
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: %v", apperr.ErrClassifierFailed, err)
	}
	return result, nil
}

func (c *AnthropicClassifier) doClassify(ctx context.Context, input model.ClassificationInput) (model.ClassificationResult, error) {
	requestID := uuid.New().String()
	prompt := buildPrompt(corruptionCriteria, input)

	slog.InfoContext(ctx, "starting classification",
		slog.String("request_id", requestID), slog.String("classifier", string(c.Type())), slog.String("url", input.URL))

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "classification failed",
			slog.String("request_id", requestID), slog.Duration("duration", duration), slog.String("error", err.Error()))
		return model.ClassificationResult{}, fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return model.ClassificationResult{}, fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return model.ClassificationResult{}, fmt.Errorf("claude api returned unexpected response type")
	}

	verdict, err := parseVerdict(textBlock.Text)
	if err != nil {
		return model.ClassificationResult{}, err
	}

	slog.InfoContext(ctx, "classification completed",
		slog.String("request_id", requestID), slog.Bool("is_relevant", verdict.IsRelevant),
		slog.Float64("confidence", verdict.Confidence), slog.Duration("duration", duration))

	return verdict.toResult(c.Type(), c.model), nil
}
