package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"dealscope/internal/config"
)

// geminiProvider serves the "gemini:" prefix via the Google GenAI SDK.
type geminiProvider struct {
	cfg config.ProviderConfig
}

func (p *geminiProvider) complete(ctx context.Context, model string, req Request) (*Response, error) {
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = p.cfg.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	defer client.Close()

	generativeModel := client.GenerativeModel(model)
	if req.SystemPrompt != "" {
		generativeModel.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	var parts []genai.Part
	for _, turn := range req.History {
		parts = append(parts, genai.Text(fmt.Sprintf("%s: %s", turn.Role, turn.Content)))
	}
	parts = append(parts, genai.Text(req.UserPrompt))

	resp, err := generativeModel.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &Response{Content: sb.String(), TokensUsed: tokens}, nil
}
