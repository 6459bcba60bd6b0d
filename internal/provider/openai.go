package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/web-agent/internal/models"
)

// FallbackResponse is returned when the model produces no content. An
// empty completion is not treated as an error.
const FallbackResponse = "Unable to generate response"

type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewOpenAIProvider(apiKey string, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   p.maxTokens,
		Temperature: float32(p.temperature),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		p.logger.Error("Failed to get completion", zap.Error(err), zap.String("model", p.model))
		return "", fmt.Errorf("error creating chat completion: %w", err)
	}

	return contentOrFallback(resp), nil
}

func toOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return converted
}

func contentOrFallback(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return FallbackResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return FallbackResponse
	}
	return content
}
