// Package llm sends single prompts to a language-model backend selected by a
// provider-prefixed model string ("openai:gpt-4o", "local:llama3", ...).
package llm

import (
	"context"
	"fmt"
	"strings"

	"dealscope/internal/config"
)

// HistoryLimit caps how many prior turns accompany a request. Document
// chunks carry almost all of the useful context, so long histories only
// burn window budget.
const HistoryLimit = 2

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Request is a single completion call.
type Request struct {
	Model        string // "<provider>:<model>"
	SystemPrompt string
	History      []Message
	UserPrompt   string

	// APIKey overrides the configured provider credential, letting each user
	// bring their own key for hosted providers.
	APIKey string
}

// Response is the backend's answer.
type Response struct {
	Content    string
	TokensUsed int
}

// Error is the single failure type every backend problem surfaces as. The
// caller decides whether to skip the chunk, the file, or abort.
type Error struct {
	Model  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm request failed (%s): %s: %v", e.Model, e.Reason, e.Err)
	}
	return fmt.Sprintf("llm request failed (%s): %s", e.Model, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Completer is the interface the pipeline depends on; tests substitute stubs.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// provider is one backend implementation behind a model-string prefix.
type provider interface {
	complete(ctx context.Context, model string, req Request) (*Response, error)
}

// Client dispatches requests to the backend named by the request's provider
// prefix.
type Client struct {
	cfg       config.LLMConfig
	providers map[string]provider
}

// NewClient builds a dispatching client from provider configuration. The
// "mock" provider is always registered so development and tests never need
// network access or credentials.
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		cfg: cfg,
		providers: map[string]provider{
			"openai":   &openAIProvider{cfg: cfg.OpenAI},
			"deepseek": &openAIProvider{cfg: cfg.DeepSeek, defaultBaseURL: "https://api.deepseek.com/v1"},
			"gemini":   &geminiProvider{cfg: cfg.Gemini},
			"local":    &ollamaProvider{cfg: cfg.Local},
			"mock":     &mockProvider{},
		},
	}
}

// Complete sends one request to the selected backend. History is capped to
// the most recent HistoryLimit turns before dispatch.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	providerName, model, ok := strings.Cut(req.Model, ":")
	if !ok || model == "" {
		return nil, &Error{Model: req.Model, Reason: "model string must be \"<provider>:<model>\""}
	}

	p, ok := c.providers[providerName]
	if !ok {
		return nil, &Error{Model: req.Model, Reason: fmt.Sprintf("unknown provider %q", providerName)}
	}

	if len(req.History) > HistoryLimit {
		req.History = req.History[len(req.History)-HistoryLimit:]
	}

	resp, err := p.complete(ctx, model, req)
	if err != nil {
		if _, isTyped := err.(*Error); isTyped {
			return nil, err
		}
		return nil, &Error{Model: req.Model, Reason: "backend error", Err: err}
	}
	return resp, nil
}

var _ Completer = (*Client)(nil)
