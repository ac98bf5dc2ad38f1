// Package ai sends completion requests to the generative-AI backend and
// extracts the single JSON document each response must contain.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/matheuskafuri/techpulse/internal/errs"
)

// Temperature biases the backend toward deterministic, factual output.
const Temperature = 0.1

// Request is one completion call.
type Request struct {
	Instruction string // role and accuracy constraints
	Prompt      string // task and expected key vocabulary
	Grounded    bool   // augment with live web search
}

// Transport performs the network call and returns the raw response text.
type Transport interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Gateway is a one-shot adapter: no retry, no caching, no timeout beyond
// the transport's own.
type Gateway struct {
	apiKey    string
	provider  string
	transport Transport
	logger    *zap.Logger
}

// New builds a Gateway for the configured provider. A missing key is not an
// error here; Complete reports it as a ConfigurationError instead.
func New(ctx context.Context, cfg *config.AIConfig, apiKey string, logger *zap.Logger) (*Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &config.AIConfig{Provider: "gemini"}
	}

	g := &Gateway{apiKey: apiKey, provider: cfg.Provider, logger: logger}
	if apiKey == "" {
		return g, nil
	}

	switch cfg.Provider {
	case "gemini", "":
		t, err := NewGeminiTransport(ctx, apiKey, cfg.ModelName())
		if err != nil {
			return nil, err
		}
		g.transport = t
	case "openai":
		g.transport = NewOpenAITransport(apiKey, cfg.ModelName(), cfg.BaseURL, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: gemini, openai)", cfg.Provider)
	}
	return g, nil
}

// NewWithTransport wires an explicit transport.
func NewWithTransport(apiKey string, t Transport, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{apiKey: apiKey, provider: t.Name(), transport: t, logger: logger}
}

// Complete issues exactly one backend request and returns the parsed JSON.
func (g *Gateway) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	if g.apiKey == "" || g.transport == nil {
		return nil, &errs.ConfigurationError{Reason: fmt.Sprintf("no API key for provider %q", g.provider)}
	}

	start := time.Now()
	text, err := g.transport.Generate(ctx, req)
	g.logger.Debug("backend call finished",
		zap.String("provider", g.transport.Name()),
		zap.Bool("grounded", req.Grounded),
		zap.Duration("took", time.Since(start)),
		zap.Int("chars", len(text)),
		zap.Error(err))
	if err != nil {
		return nil, &errs.UpstreamError{Provider: g.transport.Name(), Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &errs.UpstreamError{Provider: g.transport.Name()}
	}

	return ExtractJSON(text)
}

// ExtractJSON parses text as exactly one JSON document. Surrounding
// whitespace and a single wrapping markdown code fence are tolerated.
func ExtractJSON(text string) (json.RawMessage, error) {
	body := stripFence(strings.TrimSpace(text))

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, &errs.MalformedResponseError{Excerpt: truncate(body, 120), Err: err}
	}
	return raw, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(s[3:], "```")
	// Drop the info string ("json") on the opening line.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		if info := strings.TrimSpace(inner[:nl]); info == "" || !strings.ContainsAny(info, "{[\"") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
