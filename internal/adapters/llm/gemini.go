package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/okian/assessor/pkg/metrics"
)

// Gemini defaults.
const (
	ProviderGemini     = "gemini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// GeminiConfig defines configuration options for the Gemini completer.
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int32
	Temperature float32
}

// GeminiCompleter implements Completer using Google's Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	cfg    GeminiConfig
}

// NewGeminiCompleter creates a Gemini completer.
func NewGeminiCompleter(ctx context.Context, cfg GeminiConfig) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiCompleter{client: client, cfg: cfg}, nil
}

// Provider returns "gemini".
func (c *GeminiCompleter) Provider() string { return ProviderGemini }

// Model returns the configured model.
func (c *GeminiCompleter) Model() string { return c.cfg.Model }

// Complete generates a reply for one system+user exchange.
func (c *GeminiCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx,
		c.cfg.Model,
		genai.Text(user),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       genai.Ptr(c.cfg.Temperature),
			MaxOutputTokens:   c.cfg.MaxTokens,
		},
	)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordLLMRequest(ProviderGemini, c.cfg.Model, "error", elapsed)
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.RecordLLMRequest(ProviderGemini, c.cfg.Model, "empty", elapsed)
		return "", fmt.Errorf("gemini: %w", ErrNoChoices)
	}
	metrics.RecordLLMRequest(ProviderGemini, c.cfg.Model, "ok", elapsed)
	return text, nil
}
