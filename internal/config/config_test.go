package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	yaml := `
app:
  name: dealscope
  address: ":9090"
logger:
  level: debug
auth:
  jwtSecret: secret
  tokenTTL: 3600
llm:
  defaultModel: "mock:test"
  models:
    - name: "mock:test"
      contextWindow: 1000
      tokenSafetyMargin: 100
      maxChunkSize: 400
      reservedCompletionTokens: 200
rateLimiter:
  enabled: true
  rate: 2.5
  capacity: 10
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.App.Address != ":9090" || cfg.Auth.JwtSecret != "secret" {
		t.Errorf("cfg = %#v", cfg)
	}
	if !cfg.RateLimiter.Enabled || cfg.RateLimiter.Rate != 2.5 {
		t.Errorf("rate limiter = %#v", cfg.RateLimiter)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestProfileLookup(t *testing.T) {
	cfg := LLMConfig{Models: []ModelProfile{
		{Name: "mock:test", ContextWindow: 1000, MaxChunkSize: 400},
	}}

	if p := cfg.Profile("mock:test"); p.ContextWindow != 1000 {
		t.Errorf("listed profile = %#v", p)
	}

	// Unlisted models get the conservative default.
	p := cfg.Profile("openai:gpt-99")
	if p.ContextWindow != 8192 || p.MaxChunkSize != 4096 {
		t.Errorf("default profile = %#v", p)
	}
}
