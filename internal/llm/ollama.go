package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	olla "github.com/ollama/ollama/api"

	"dealscope/internal/config"
)

// ollamaProvider serves the "local:" prefix against an Ollama daemon.
type ollamaProvider struct {
	cfg config.ProviderConfig
}

func (p *ollamaProvider) complete(ctx context.Context, model string, req Request) (*Response, error) {
	baseURL := p.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	client := olla.NewClient(parsedURL, &http.Client{Timeout: 120 * time.Second})

	var result *olla.GenerateResponse
	stream := false
	err = client.Generate(ctx, &olla.GenerateRequest{
		Model:  model,
		Prompt: p.buildPrompt(req),
		Stream: &stream,
	}, func(resp olla.GenerateResponse) error {
		result = &resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("empty response")
	}

	return &Response{
		Content:    result.Response,
		TokensUsed: result.Metrics.PromptEvalCount + result.Metrics.EvalCount,
	}, nil
}

// buildPrompt flattens system prompt, history, and user prompt into one text
// prompt for the completion endpoint.
func (p *ollamaProvider) buildPrompt(req Request) string {
	var sb strings.Builder
	if req.SystemPrompt != "" {
		sb.WriteString(req.SystemPrompt)
		sb.WriteString("\n\n")
	}
	for _, turn := range req.History {
		sb.WriteString(turn.Role)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	sb.WriteString(req.UserPrompt)
	return sb.String()
}
