// Package council enriches heuristic metrics with an optional multi-persona
// review from an external consultation service.
package council

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/okian/assessor/internal/domain/model"
)

// Review metric constants.
const (
	MetricName          = "AI Council Review"
	MetricCategory      = "ai_assessment"
	MetricWeight        = 0.4
	FallbackScore       = 80.0
	DefaultConfidence   = 0.8
	InsightConfidence   = 0.85
	maxQueryChars       = 8000
	maxExplanationChars = 200
	noSynthesis         = "No synthesis provided."
)

// PersonaResponse is one persona's answer within a consultation.
type PersonaResponse struct {
	Persona string `json:"persona"`
	Content string `json:"content"`
}

// Consultation is the raw outcome of asking the council a question.
type Consultation struct {
	Synthesis string            `json:"synthesis"`
	Responses []PersonaResponse `json:"responses"`
}

// Consulter asks a council of personas a question.
type Consulter interface {
	Consult(ctx context.Context, query string) (Consultation, error)
}

// Insights is the parsed council verdict for one path.
type Insights struct {
	Synthesis  string            `json:"synthesis"`
	Responses  []PersonaResponse `json:"responses"`
	Score      *float64          `json:"score"`
	Confidence float64           `json:"confidence"`
}

// InsightProvider supplies optional external insights. Implementations must
// not return errors for consultation failures; they report no insights.
type InsightProvider interface {
	Available() bool
	GetInsights(ctx context.Context, content map[string]any, path model.PathType) (*Insights, bool)
}

// Nop is the provider used when no council is configured.
type Nop struct{}

// Available always reports false.
func (Nop) Available() bool { return false }

// GetInsights never returns insights.
func (Nop) GetInsights(context.Context, map[string]any, model.PathType) (*Insights, bool) {
	return nil, false
}

// BuildQuery renders the review prompt. Submission text is bounded to 8000
// characters.
func BuildQuery(text string, path model.PathType) string {
	return fmt.Sprintf(
		"Assess this submission for the '%s' path.\n"+
			"Provide a critical review focusing on:\n"+
			"1. Strengths\n"+
			"2. Weaknesses\n"+
			"3. A numerical score estimation (0-100) based on quality and best practices.\n\n"+
			"Code/Content:\n%s",
		path, truncate(text, maxQueryChars),
	)
}

var scorePattern = regexp.MustCompile(`(?i)score[:\s]+(\d+)/100`)

// ParseScore extracts the first "score: N/100" from a synthesis, clamped to
// [0,100].
func ParseScore(synthesis string) (float64, bool) {
	m := scorePattern.FindStringSubmatch(synthesis)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return math.Max(0, math.Min(100, v)), true
}

// EnhanceMetrics returns metrics with the council review appended. Nil
// insights leave metrics untouched.
func EnhanceMetrics(metrics []model.ScoringMetric, insights *Insights, _ model.PathType) []model.ScoringMetric {
	if insights == nil {
		return metrics
	}
	synthesis := insights.Synthesis
	if synthesis == "" {
		synthesis = noSynthesis
	}
	score := FallbackScore
	if insights.Score != nil {
		score = *insights.Score
	}
	confidence := insights.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = DefaultConfidence
	}

	out := make([]model.ScoringMetric, len(metrics), len(metrics)+1)
	copy(out, metrics)
	return append(out, model.ScoringMetric{
		Name:     MetricName,
		Category: MetricCategory,
		Score:    score,
		Weight:   MetricWeight,
		Evidence: []model.Evidence{{
			Type:        model.EvidenceCodeQuality,
			Description: "Council Consensus",
			Source:      "council_ai",
			Weight:      1.0,
			Metadata:    map[string]any{"synthesis": synthesis},
		}},
		Explanation: fmt.Sprintf("The AI Council (various personas) reviewed the submission. Consensus: %s...",
			truncate(synthesis, maxExplanationChars)),
		Confidence: confidence,
	})
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
