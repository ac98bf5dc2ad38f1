package ai

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAITransport calls any OpenAI-compatible chat completion endpoint.
// Web-search grounding is not available through this API.
type OpenAITransport struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAITransport(apiKey, model, baseURL string, logger *zap.Logger) *OpenAITransport {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAITransport{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}
}

func (t *OpenAITransport) Name() string {
	return "openai:" + t.model
}

func (t *OpenAITransport) Generate(ctx context.Context, req Request) (string, error) {
	if req.Grounded {
		t.logger.Debug("grounding requested but not supported by provider", zap.String("model", t.model))
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Instruction},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
