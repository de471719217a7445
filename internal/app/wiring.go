package app

import (
	"context"
	"fmt"

	"github.com/okian/assessor/internal/adapters/llm"
	"github.com/okian/assessor/internal/config"
	"github.com/okian/assessor/internal/domain/council"
	"github.com/okian/assessor/internal/domain/patterns"
	"github.com/okian/assessor/pkg/logger"
)

// FromConfig builds an Engine from process configuration. The council is
// attached only when enabled; a council that cannot be built is logged and
// the engine runs heuristic-only.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}
	weights := patterns.SeverityWeights{}
	for sev, w := range cfg.SeverityPenalties() {
		weights[patterns.Severity(sev)] = w
	}

	opts := []Option{
		WithVersion(cfg.EngineVersion),
		WithLogger(log.Named("engine")),
		WithPatternChecks(cfg.PatternChecksEnabled),
		WithSeverityWeights(weights),
		WithMaxPenalty(cfg.PatternPenaltyMax),
		WithMicroMotives(cfg.MicroMotivesEnabled),
	}

	rules := patterns.Default()
	if cfg.PatternRulesFile != "" {
		loaded, err := patterns.LoadRules(cfg.PatternRulesFile)
		if err != nil {
			return nil, fmt.Errorf("app: rules: %w", err)
		}
		rules = loaded
	}
	rules, err := rules.WithMatchTimeout(cfg.PatternMatchTimeout)
	if err != nil {
		return nil, fmt.Errorf("app: rules: %w", err)
	}
	opts = append(opts, WithRuleSet(rules))

	if cfg.CouncilEnabled {
		c, err := llm.New(ctx, llm.Config{
			Provider: cfg.CouncilProvider,
			APIKey:   cfg.CouncilAPIKey,
			Model:    cfg.CouncilModel,
			BaseURL:  cfg.CouncilBaseURL,
			Domain:   cfg.CouncilDomain,
		})
		if err != nil {
			log.Warn(ctx, "council unavailable; running heuristic-only",
				logger.String("provider", cfg.CouncilProvider), logger.Error(err))
		} else {
			opts = append(opts, WithInsightProvider(council.NewAdapter(c,
				council.WithDomain(cfg.CouncilDomain),
				council.WithTimeout(cfg.CouncilTimeout),
				council.WithLogger(log.Named("council")),
			)))
		}
	}

	return New(opts...), nil
}
