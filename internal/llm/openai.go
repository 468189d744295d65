package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"dealscope/internal/config"
)

// openAIProvider talks to any OpenAI-compatible chat completion API. With a
// custom base URL this also covers DeepSeek.
type openAIProvider struct {
	cfg            config.ProviderConfig
	defaultBaseURL string
}

func (p *openAIProvider) complete(ctx context.Context, model string, req Request) (*Response, error) {
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = p.cfg.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if p.cfg.BaseURL != "" {
		clientConfig.BaseURL = p.cfg.BaseURL
	} else if p.defaultBaseURL != "" {
		clientConfig.BaseURL = p.defaultBaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, turn := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	return &Response{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
