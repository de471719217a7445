// Package scoring turns submission text into per-path metrics and
// micro-motives using fixed keyword heuristics.
package scoring

import (
	"math"
	"strings"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/patterns"
)

const (
	minScore = 0
	maxScore = 100

	// maxViolationEvidence caps violation evidence attached to Code Quality.
	maxViolationEvidence = 10
)

// Option applies a configuration option to the HeuristicScorer.
type Option func(*HeuristicScorer)

// WithPatternChecks toggles the Code Quality pattern penalty.
func WithPatternChecks(enabled bool) Option {
	return func(s *HeuristicScorer) {
		s.patternChecks = enabled
	}
}

// WithSeverityWeights sets the penalty weight per severity.
func WithSeverityWeights(weights patterns.SeverityWeights) Option {
	return func(s *HeuristicScorer) {
		if weights == nil {
			return
		}
		// Copy the weights map to avoid external modifications
		s.weights = make(patterns.SeverityWeights, len(weights))
		for sev, w := range weights {
			if w >= 0 {
				s.weights[sev] = w
			}
		}
	}
}

// WithMaxPenalty caps the pattern penalty.
func WithMaxPenalty(max float64) Option {
	return func(s *HeuristicScorer) {
		if max >= 0 {
			s.maxPenalty = max
		}
	}
}

// HeuristicScorer produces metrics for a path. It holds only configuration
// and is safe for concurrent use.
type HeuristicScorer struct {
	patternChecks bool
	weights       patterns.SeverityWeights
	maxPenalty    float64
}

// NewHeuristicScorer creates a scorer with pattern checks enabled and the
// default penalty table.
func NewHeuristicScorer(opts ...Option) *HeuristicScorer {
	s := &HeuristicScorer{
		patternChecks: true,
		weights:       patterns.DefaultSeverityWeights(),
		maxPenalty:    patterns.DefaultMaxPenalty,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PatternChecks reports whether pattern penalties are applied.
func (s *HeuristicScorer) PatternChecks() bool { return s.patternChecks }

// SeverityWeights returns a copy of the penalty weights.
func (s *HeuristicScorer) SeverityWeights() patterns.SeverityWeights {
	out := make(patterns.SeverityWeights, len(s.weights))
	for k, v := range s.weights {
		out[k] = v
	}
	return out
}

// MaxPenalty returns the penalty cap.
func (s *HeuristicScorer) MaxPenalty() float64 { return s.maxPenalty }

// Penalty computes the pattern penalty with this scorer's configuration.
func (s *HeuristicScorer) Penalty(violations []patterns.Violation) float64 {
	return patterns.Penalty(violations, s.weights, s.maxPenalty)
}

// GenerateMetricsForPath runs the battery for path. Unknown paths yield an
// empty list.
func (s *HeuristicScorer) GenerateMetricsForPath(path model.PathType, in model.AssessmentInput, violations []patterns.Violation) []model.ScoringMetric {
	run, ok := batteryFor(path)
	if !ok {
		return []model.ScoringMetric{}
	}
	return run(s, in.Text(), violations)
}

type battery func(s *HeuristicScorer, text string, violations []patterns.Violation) []model.ScoringMetric

func batteryFor(path model.PathType) (battery, bool) {
	switch path {
	case model.PathTechnical:
		return technicalBattery, true
	case model.PathDesign:
		return designBattery, true
	case model.PathCollaboration:
		return collaborationBattery, true
	case model.PathProblemSolving:
		return problemSolvingBattery, true
	default:
		return nil, false
	}
}

func clamp(score float64) float64 {
	return math.Max(minScore, math.Min(maxScore, score))
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// band picks one of three explanations by score threshold.
func band(score, high, mid float64, top, middle, low string) string {
	switch {
	case score >= high:
		return top
	case score >= mid:
		return middle
	default:
		return low
	}
}
