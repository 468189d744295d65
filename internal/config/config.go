package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic application metadata.
type AppInfo struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Address     string `yaml:"address"`
}

// LoggerConfig controls the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// AuthConfig configures JWT issuing and validation.
type AuthConfig struct {
	JwtSecret string `yaml:"jwtSecret"`
	TokenTTL  int    `yaml:"tokenTTL"` // seconds
}

// MySQLConfig holds the relational store connection settings.
type MySQLConfig struct {
	Address         string `yaml:"address"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// RedisConfig holds the cache connection settings.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MinIOConfig holds the object storage connection settings.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// KafkaConfig holds the audit event broker settings. An empty broker list
// disables audit publishing.
type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	AuditTopic string   `yaml:"auditTopic"`
}

// DatabaseConfigs groups every backing store.
type DatabaseConfigs struct {
	MySQL MySQLConfig `yaml:"mysql"`
	Redis RedisConfig `yaml:"redis"`
	MinIO MinIOConfig `yaml:"minio"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// ProviderConfig holds the credential and endpoint for one LLM provider.
type ProviderConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
}

// ModelProfile sizes the chunker for one model: how large its context window
// is and how much of it a single chunk may consume.
type ModelProfile struct {
	Name                     string `yaml:"name"` // "<provider>:<model>"
	ContextWindow            int    `yaml:"contextWindow"`
	TokenSafetyMargin        int    `yaml:"tokenSafetyMargin"`
	MaxChunkSize             int    `yaml:"maxChunkSize"`
	ReservedCompletionTokens int    `yaml:"reservedCompletionTokens"`
}

// LLMConfig configures the provider clients and the model roster.
type LLMConfig struct {
	DefaultModel string         `yaml:"defaultModel"`
	OpenAI       ProviderConfig `yaml:"openai"`
	DeepSeek     ProviderConfig `yaml:"deepseek"`
	Gemini       ProviderConfig `yaml:"gemini"`
	Local        ProviderConfig `yaml:"local"` // ollama; BaseURL only
	Models       []ModelProfile `yaml:"models"`
}

// Profile returns the chunking profile for a model string, or a conservative
// default when the model is not listed.
func (c *LLMConfig) Profile(model string) ModelProfile {
	for _, m := range c.Models {
		if m.Name == model {
			return m
		}
	}
	return ModelProfile{
		Name:                     model,
		ContextWindow:            8192,
		TokenSafetyMargin:        512,
		MaxChunkSize:             4096,
		ReservedCompletionTokens: 1024,
	}
}

// SearchConfig configures the full-text company index.
type SearchConfig struct {
	IndexPath string `yaml:"indexPath"` // empty selects an in-memory index
}

// SECDataConfig configures the financial-data API proxy.
type SECDataConfig struct {
	BaseURL   string `yaml:"baseURL"`
	UserAgent string `yaml:"userAgent"`
	CacheTTL  int    `yaml:"cacheTTL"` // seconds
}

// RateLimiterConfig throttles the LLM-backed routes with a token bucket.
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"` // tokens per second
	Capacity int     `yaml:"capacity"`
}

// PromptsConfig points at the instruction template directory. Templates
// missing from the directory fall back to the embedded defaults.
type PromptsConfig struct {
	Dir string `yaml:"dir"`
}

// AppConfig is the root of config.yaml.
type AppConfig struct {
	App         AppInfo           `yaml:"app"`
	Logger      LoggerConfig      `yaml:"logger"`
	Auth        AuthConfig        `yaml:"auth"`
	Databases   DatabaseConfigs   `yaml:"databases"`
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	SECData     SECDataConfig     `yaml:"secdata"`
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"`
	Prompts     PromptsConfig     `yaml:"prompts"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return &cfg, nil
}
