package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sommelier/internal/domain"
	"github.com/kailas-cloud/sommelier/internal/metrics"
)

// SynthesizerConfig adds completion settings to Config.
type SynthesizerConfig struct {
	Config
	MaxTokens   int
	Temperature float32
}

// Synthesizer answers prompts through an OpenAI-compatible chat completions endpoint.
type Synthesizer struct {
	client      *openai.Client
	model       string
	user        string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewSynthesizer creates an OpenAI-compatible synthesizer.
func NewSynthesizer(cfg *SynthesizerConfig) *Synthesizer {
	return &Synthesizer{
		client:      newClient(&cfg.Config),
		model:       cfg.Model,
		user:        cfg.User,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// Model returns the configured model name.
func (s *Synthesizer) Model() string { return s.model }

// Synthesize implements domain.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, prompt domain.Prompt) (domain.SynthesisResult, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		User:        s.user,
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(kindSynthesis, s.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(kindSynthesis, s.model, "api_error").Inc()
		return domain.SynthesisResult{}, parseAPIError(kindSynthesis, err, domain.ErrSynthesis)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(kindSynthesis, s.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(kindSynthesis, s.model, "empty_response").Inc()
		return domain.SynthesisResult{}, fmt.Errorf("empty completion response: %w", domain.ErrSynthesis)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(kindSynthesis, s.model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(kindSynthesis, s.model).Observe(duration.Seconds())
	metrics.ProviderTokensTotal.WithLabelValues(kindSynthesis, s.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.ProviderTokensTotal.WithLabelValues(kindSynthesis, s.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	metrics.ProviderTokensTotal.WithLabelValues(kindSynthesis, s.model, "total").Add(float64(resp.Usage.TotalTokens))

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		s.logger.Warn("Completion truncated at max tokens",
			zap.String("model", s.model),
			zap.Int("max_tokens", s.maxTokens),
		)
	}

	return domain.SynthesisResult{
		Text:             strings.TrimSpace(choice.Message.Content),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (s *Synthesizer) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
