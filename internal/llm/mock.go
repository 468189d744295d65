package llm

import (
	"context"
	"strings"
)

// mockProvider serves the "mock:" prefix with deterministic canned responses
// and no network access. Prompts that ask for JSON get an empty array so the
// downstream parsers stay on their happy path during development.
type mockProvider struct{}

func (p *mockProvider) complete(ctx context.Context, model string, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := "mock summary: " + firstWords(req.UserPrompt, 12)
	if strings.Contains(req.SystemPrompt, "JSON") || strings.Contains(req.UserPrompt, "JSON") {
		content = "[]"
	}

	return &Response{
		Content:    content,
		TokensUsed: len(strings.Fields(req.UserPrompt)),
	}, nil
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
