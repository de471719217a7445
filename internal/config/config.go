// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults.
//   - Load layers a YAML file and ASSESSOR_* environment variables on top.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Supported council providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches the logger to JSON output.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EngineVersion is reported in results and on /health.
	EngineVersion string `koanf:"engine_version"`

	// PatternChecksEnabled toggles anti-pattern detection for code submissions.
	PatternChecksEnabled bool `koanf:"pattern_checks_enabled"`

	// Per-severity penalty weights and the total cap.
	PatternPenaltyLow      float64 `koanf:"pattern_penalty_low"`
	PatternPenaltyMedium   float64 `koanf:"pattern_penalty_medium"`
	PatternPenaltyHigh     float64 `koanf:"pattern_penalty_high"`
	PatternPenaltyCritical float64 `koanf:"pattern_penalty_critical"`
	PatternPenaltyMax      float64 `koanf:"pattern_penalty_max"`

	// PatternRulesFile optionally replaces the built-in rule table.
	PatternRulesFile string `koanf:"pattern_rules_file"`

	// PatternMatchTimeout bounds one rule on one line.
	PatternMatchTimeout time.Duration `koanf:"pattern_match_timeout"`

	// MicroMotivesEnabled toggles motive identification.
	MicroMotivesEnabled bool `koanf:"micro_motives_enabled"`

	// Council settings. The council is only built when CouncilEnabled is set.
	CouncilEnabled  bool          `koanf:"council_enabled"`
	CouncilProvider string        `koanf:"council_provider"`
	CouncilDomain   string        `koanf:"council_domain"`
	CouncilAPIKey   string        `koanf:"council_api_key"`
	CouncilModel    string        `koanf:"council_model"`
	CouncilBaseURL  string        `koanf:"council_base_url"`
	CouncilTimeout  time.Duration `koanf:"council_timeout"`

	// APIKey enables X-API-Key / Bearer auth when non-empty.
	APIKey string `koanf:"api_key"`

	// CORSAllowedOrigins lists origins allowed by the CORS middleware. "*" allows all.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimitPerMinute caps requests per client; 0 disables limiting.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
	RateLimitBurst     int `koanf:"rate_limit_burst"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		EngineVersion:          "2.0",
		PatternChecksEnabled:   true,
		PatternPenaltyLow:      1,
		PatternPenaltyMedium:   3,
		PatternPenaltyHigh:     5,
		PatternPenaltyCritical: 5,
		PatternPenaltyMax:      15,
		PatternMatchTimeout:    time.Second,
		MicroMotivesEnabled:    true,
		CouncilProvider:        ProviderOpenAI,
		CouncilDomain:          "coding",
		CouncilTimeout:         30 * time.Second,
		CORSAllowedOrigins:     []string{"*"},
		RateLimitPerMinute:     60,
		RateLimitBurst:         10,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	for _, w := range []struct {
		key   string
		value float64
	}{
		{"pattern_penalty_low", c.PatternPenaltyLow},
		{"pattern_penalty_medium", c.PatternPenaltyMedium},
		{"pattern_penalty_high", c.PatternPenaltyHigh},
		{"pattern_penalty_critical", c.PatternPenaltyCritical},
		{"pattern_penalty_max", c.PatternPenaltyMax},
	} {
		if w.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, w.key)
		}
	}
	if c.PatternMatchTimeout <= 0 {
		return fmt.Errorf("%w: pattern_match_timeout must be positive", ErrInvalidConfig)
	}
	if c.CouncilEnabled {
		switch strings.ToLower(strings.TrimSpace(c.CouncilProvider)) {
		case ProviderOpenAI, ProviderGemini:
		default:
			return fmt.Errorf("%w: unknown council_provider %q", ErrInvalidConfig, c.CouncilProvider)
		}
		if c.CouncilTimeout <= 0 {
			return fmt.Errorf("%w: council_timeout must be positive", ErrInvalidConfig)
		}
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("%w: rate_limit_per_minute must not be negative", ErrInvalidConfig)
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("%w: rate_limit_burst must not be negative", ErrInvalidConfig)
	}
	return nil
}

// SeverityPenalties returns the configured per-severity weights keyed by severity name.
func (c *Config) SeverityPenalties() map[string]float64 {
	return map[string]float64{
		"low":      c.PatternPenaltyLow,
		"medium":   c.PatternPenaltyMedium,
		"high":     c.PatternPenaltyHigh,
		"critical": c.PatternPenaltyCritical,
	}
}
