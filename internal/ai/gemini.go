package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiTransport calls the Gemini API.
type GeminiTransport struct {
	client *genai.Client
	model  string
}

func NewGeminiTransport(ctx context.Context, apiKey, model string) (*GeminiTransport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	return newGeminiTransport(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newGeminiTransport(ctx context.Context, cc *genai.ClientConfig, model string) (*GeminiTransport, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiTransport{client: client, model: model}, nil
}

func (t *GeminiTransport) Name() string {
	return "gemini:" + t.model
}

func (t *GeminiTransport) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Instruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](Temperature),
	}
	// The API refuses JSON mode together with the search tool, so grounded
	// calls rely on the instruction to keep the output a bare JSON document.
	if req.Grounded {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
