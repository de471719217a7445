// Package app wires the scoring domain into the assessment engine used by the
// HTTP API and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/assessor/internal/domain/council"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/patterns"
	"github.com/okian/assessor/internal/domain/scoring"
	"github.com/okian/assessor/pkg/logger"
	"github.com/okian/assessor/pkg/metrics"
)

// Engine defaults.
const (
	DefaultVersion    = "2.0"
	defaultConfidence = 0.85

	fallbackScore      = 50.0
	fallbackWeight     = 1.0
	fallbackConfidence = 0.7
)

// Engine runs one deterministic assessment pass per call. It holds only
// configuration set at construction and is safe for concurrent use.
type Engine struct {
	version        string
	logger         logger.Logger
	scorerOpts     []scoring.Option
	heuristics     *scoring.HeuristicScorer
	motives        *scoring.MicroMotiveScorer
	motivesEnabled bool
	rules          *patterns.RuleSet
	insights       council.InsightProvider
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithVersion sets the engine version reported in results.
func WithVersion(v string) Option {
	return func(e *Engine) {
		if v != "" {
			e.version = v
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPatternChecks toggles anti-pattern detection for code submissions.
func WithPatternChecks(enabled bool) Option {
	return func(e *Engine) {
		e.scorerOpts = append(e.scorerOpts, scoring.WithPatternChecks(enabled))
	}
}

// WithSeverityWeights sets the penalty points per severity.
func WithSeverityWeights(w patterns.SeverityWeights) Option {
	return func(e *Engine) {
		e.scorerOpts = append(e.scorerOpts, scoring.WithSeverityWeights(w))
	}
}

// WithMaxPenalty caps the pattern penalty.
func WithMaxPenalty(max float64) Option {
	return func(e *Engine) {
		e.scorerOpts = append(e.scorerOpts, scoring.WithMaxPenalty(max))
	}
}

// WithRuleSet replaces the built-in pattern rules.
func WithRuleSet(rs *patterns.RuleSet) Option {
	return func(e *Engine) {
		if rs != nil {
			e.rules = rs
		}
	}
}

// WithMicroMotives toggles micro-motive tracking.
func WithMicroMotives(enabled bool) Option {
	return func(e *Engine) {
		e.motivesEnabled = enabled
	}
}

// WithInsightProvider attaches an external insight source.
func WithInsightProvider(p council.InsightProvider) Option {
	return func(e *Engine) {
		if p != nil {
			e.insights = p
		}
	}
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		version:        DefaultVersion,
		logger:         logger.Nop(),
		motives:        scoring.NewMicroMotiveScorer(),
		motivesEnabled: true,
		rules:          patterns.Default(),
		insights:       council.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.heuristics = scoring.NewHeuristicScorer(e.scorerOpts...)
	return e
}

// Version returns the engine version.
func (e *Engine) Version() string { return e.version }

// Rules returns the active pattern rules in scan order.
func (e *Engine) Rules() []patterns.Rule { return e.rules.Rules() }

// PatternChecksEnabled reports whether pattern checks run for code.
func (e *Engine) PatternChecksEnabled() bool { return e.heuristics.PatternChecks() }

// CouncilAvailable reports whether council enrichment is active.
func (e *Engine) CouncilAvailable() bool { return e.insights.Available() }

// DetectPatternViolations scans code with the engine's rule set.
func (e *Engine) DetectPatternViolations(code string) []patterns.Violation {
	return patterns.Detect(code, e.rules)
}

// CalculatePatternPenalty applies the engine's weights and cap.
func (e *Engine) CalculatePatternPenalty(violations []patterns.Violation) float64 {
	return e.heuristics.Penalty(violations)
}

// Assess scores in across its requested paths. The only error returned is
// the context's, when ctx ends before the result is built.
func (e *Engine) Assess(ctx context.Context, in model.AssessmentInput) (*model.AssessmentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assess: %w", err)
	}
	start := time.Now()
	id := newAssessmentID(start)

	checks := e.heuristics.PatternChecks() && in.SubmissionType == model.SubmissionCode
	var violations []patterns.Violation
	penalty := 0.0
	if checks {
		violations = patterns.Detect(in.Text(), e.rules)
		penalty = e.heuristics.Penalty(violations)
		for _, v := range violations {
			metrics.RecordPatternViolation(v.Pattern, string(v.Severity))
		}
		metrics.RecordPatternPenalty(penalty)
	}

	councilActive := e.insights.Available()
	paths := uniquePaths(in.PathsToEvaluate)
	pathScores := make([]model.PathScore, 0, len(paths))
	allMotives := []model.MicroMotive{}
	var confidences []float64

	for _, path := range paths {
		pm := e.heuristicMetrics(ctx, path, in, violations)
		if len(pm) == 0 {
			pm = []model.ScoringMetric{fallbackMetric(path)}
		}

		if councilActive {
			if insights, ok := e.councilInsights(ctx, path, in); ok {
				pm = council.EnhanceMetrics(pm, insights, path)
			}
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("assess: %w", err)
			}
		}

		motives := []model.MicroMotive{}
		if e.motivesEnabled {
			motives = e.identifyMotives(ctx, path, in)
		}

		ps := model.PathScore{
			Path:                path,
			OverallScore:        pathScore(pm),
			Metrics:             pm,
			Motives:             motives,
			Strengths:           strengths(pm),
			AreasForImprovement: improvements(pm),
		}
		pathScores = append(pathScores, ps)
		allMotives = append(allMotives, motives...)
		for _, m := range pm {
			confidences = append(confidences, m.Confidence)
		}
		metrics.RecordPathScore(string(path), ps.OverallScore)
	}

	overall := overallScore(pathScores)
	dominant := dominantPath(pathScores)
	mode := model.ModeHeuristic
	if councilActive {
		mode = model.ModeHybridCouncil
	}

	result := &model.AssessmentResult{
		CandidateID:     in.CandidateID,
		AssessmentID:    id,
		OverallScore:    overall,
		Confidence:      meanConfidence(confidences),
		PathScores:      pathScores,
		MicroMotives:    allMotives,
		DominantPath:    dominant,
		Summary:         summarize(overall, dominant, allMotives),
		KeyFindings:     keyFindings(pathScores),
		Recommendations: recommendations(pathScores),
		EngineVersion:   e.version,
		Metadata: map[string]any{
			model.MetaAssessmentMode:   mode,
			model.MetaCouncilAvailable: councilActive,
			model.MetaPatternChecks: model.PatternCheckSummary{
				Enabled:        checks,
				ViolationCount: len(violations),
				PenaltyPoints:  penalty,
				Violations:     patterns.ToMetadata(violations),
			},
		},
	}
	result.ProcessingTimeMS = float64(time.Since(start).Microseconds()) / 1000

	metrics.RecordAssessment(mode, result.ProcessingTimeMS, overall)
	e.logger.Info(ctx, "assessment complete",
		logger.String("assessment_id", id),
		logger.String("candidate_id", in.CandidateID),
		logger.Int("paths", len(pathScores)),
		logger.Float64("overall_score", overall),
		logger.String("mode", mode),
		logger.Int("violations", len(violations)),
		logger.Float64("processing_time_ms", result.ProcessingTimeMS),
	)
	return result, nil
}

// heuristicMetrics runs the battery for path. A panicking battery degrades
// to no metrics so the caller substitutes the neutral fallback.
func (e *Engine) heuristicMetrics(ctx context.Context, path model.PathType, in model.AssessmentInput, violations []patterns.Violation) (out []model.ScoringMetric) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordHeuristicFailure(string(path))
			metrics.RecordErrorByComponent("heuristics", "panic")
			e.logger.Error(ctx, "heuristic battery failed", logger.String("path", string(path)), logger.Any("panic", r))
			out = nil
		}
	}()
	return e.heuristics.GenerateMetricsForPath(path, in, violations)
}

// councilInsights shields the pipeline from a misbehaving provider.
func (e *Engine) councilInsights(ctx context.Context, path model.PathType, in model.AssessmentInput) (insights *council.Insights, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("council", "panic")
			e.logger.Error(ctx, "insight provider failed", logger.String("path", string(path)), logger.Any("panic", r))
			insights, ok = nil, false
		}
	}()
	return e.insights.GetInsights(ctx, in.Content, path)
}

func (e *Engine) identifyMotives(ctx context.Context, path model.PathType, in model.AssessmentInput) (out []model.MicroMotive) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordHeuristicFailure(string(path))
			metrics.RecordErrorByComponent("motives", "panic")
			e.logger.Error(ctx, "motive scoring failed", logger.String("path", string(path)), logger.Any("panic", r))
			out = []model.MicroMotive{}
		}
	}()
	return e.motives.IdentifyMicroMotives(path, in)
}

func newAssessmentID(t time.Time) string {
	return fmt.Sprintf("assess_%d_%s", t.UnixMilli(), uuid.NewString()[:8])
}

func fallbackMetric(path model.PathType) model.ScoringMetric {
	return model.ScoringMetric{
		Name:        path.Title() + " Assessment",
		Category:    string(path),
		Score:       fallbackScore,
		Weight:      fallbackWeight,
		Evidence:    []model.Evidence{},
		Explanation: fmt.Sprintf("Basic assessment for %s path", path),
		Confidence:  fallbackConfidence,
	}
}
