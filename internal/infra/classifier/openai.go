package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/resilience/circuitbreaker"
	"corruption-watch/internal/resilience/retry"
)

// OpenAIModel is the model used for the HURRICANE_RELIEF classifier.
const OpenAIModel = openai.GPT4oMini

// OpenAIClassifier judges HURRICANE_RELIEF relevance using OpenAI's
// chat completion API.
type OpenAIClassifier struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          string
	timeout        time.Duration
}

// NewOpenAIClassifier builds the HURRICANE_RELIEF classifier with the
// given OpenAI API key.
func NewOpenAIClassifier(apiKey string) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		model:          OpenAIModel,
		timeout:        60 * time.Second,
	}
}

func (o *OpenAIClassifier) Type() model.ClassifierType {
	return model.ClassifierHurricaneRelief
}

// Classify runs the hurricane-relief-relevance prompt through OpenAI,
// requesting a strict JSON object response.
func (o *OpenAIClassifier) Classify(ctx context.Context, input model.ClassificationInput) (model.ClassificationResult, error) {
	if err := input.Validate(); err != nil {
		return model.ClassificationResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var result model.ClassificationResult
	err := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doClassify(ctx, input)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("classifier", string(o.Type())), slog.String("url", input.URL))
				return fmt.Errorf("%w: openai api unavailable: circuit breaker open", apperr.ErrClassifierFailed)
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

func (o *OpenAIClassifier) doClassify(ctx context.Context, input model.ClassificationInput) (model.ClassificationResult, error) {
	prompt := buildPrompt(hurricaneReliefCriteria, input)

	slog.InfoContext(ctx, "starting classification",
		slog.String("classifier", string(o.Type())), slog.String("url", input.URL))

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		}},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "classification failed",
			slog.Duration("duration", duration), slog.String("error", err.Error()))
		return model.ClassificationResult{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.ClassificationResult{}, fmt.Errorf("openai api returned empty response")
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return model.ClassificationResult{}, err
	}

	slog.InfoContext(ctx, "classification completed",
		slog.Bool("is_relevant", verdict.IsRelevant), slog.Float64("confidence", verdict.Confidence),
		slog.Duration("duration", duration))

	return verdict.toResult(o.Type(), o.model), nil
}
