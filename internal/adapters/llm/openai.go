package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/okian/assessor/pkg/metrics"
)

// OpenAI defaults.
const (
	ProviderOpenAI     = "openai"
	DefaultOpenAIModel = "gpt-4o-mini"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

// OpenAIConfig defines configuration options for the OpenAI completer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// OpenAICompleter implements Completer against the chat completion API.
// BaseURL allows any OpenAI-compatible endpoint.
type OpenAICompleter struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAICompleter builds a completer using the provided configuration.
func NewOpenAICompleter(cfg OpenAIConfig) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
	}, nil
}

// Provider returns "openai".
func (c *OpenAICompleter) Provider() string { return ProviderOpenAI }

// Model returns the configured model.
func (c *OpenAICompleter) Model() string { return c.cfg.Model }

// Complete sends one system+user exchange and returns the reply text.
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordLLMRequest(ProviderOpenAI, c.cfg.Model, "error", elapsed)
		return "", fmt.Errorf("openai complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.RecordLLMRequest(ProviderOpenAI, c.cfg.Model, "empty", elapsed)
		return "", fmt.Errorf("openai: %w", ErrNoChoices)
	}
	metrics.RecordLLMRequest(ProviderOpenAI, c.cfg.Model, "ok", elapsed)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
