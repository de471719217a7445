package scoring

import (
	"math"
	"strings"

	"github.com/okian/assessor/internal/domain/model"
)

type trigger struct {
	words     []string
	indicator string
	delta     float64
}

type motiveRule struct {
	motive   model.MotiveType
	base     float64
	triggers []trigger
}

var motiveRules = map[model.PathType][]motiveRule{
	model.PathTechnical: {
		{
			motive: model.MotiveMastery,
			base:   0.5,
			triggers: []trigger{
				{words: []string{"algorithm", "optimize", "efficient", "complexity"}, indicator: "Deep technical understanding", delta: 0.2},
				{words: []string{"pattern", "design"}, indicator: "Design pattern awareness", delta: 0.15},
			},
		},
		{
			motive: model.MotiveQuality,
			base:   0.4,
			triggers: []trigger{
				{words: []string{"test", "error"}, indicator: "Quality-focused approach", delta: 0.2},
				{words: []string{"clean", "readable"}, indicator: "Code quality awareness", delta: 0.15},
			},
		},
		{
			motive: model.MotiveEfficiency,
			base:   0.6,
			triggers: []trigger{
				{words: []string{"optimize", "performance"}, indicator: "Performance optimization focus"},
			},
		},
	},
	model.PathDesign: {{
		motive: model.MotiveInnovation,
		base:   0.4,
		triggers: []trigger{
			{words: []string{"alternative", "approach"}, indicator: "Explores multiple approaches", delta: 0.2},
			{words: []string{"creative", "novel"}, indicator: "Creative thinking", delta: 0.15},
		},
	}},
	model.PathCollaboration: {{
		motive: model.MotiveCollaboration,
		base:   0.4,
		triggers: []trigger{
			{words: []string{"document", "comment"}, indicator: "Documentation focus", delta: 0.2},
			{words: []string{"team", "collaborate"}, indicator: "Team-oriented thinking", delta: 0.15},
		},
	}},
	model.PathProblemSolving: {{
		motive: model.MotiveExploration,
		base:   0.4,
		triggers: []trigger{
			{words: []string{"explore", "investigate"}, indicator: "Exploratory approach", delta: 0.2},
			{words: []string{"analyze", "break"}, indicator: "Analytical exploration", delta: 0.15},
		},
	}},
}

// MicroMotiveScorer detects motivational signals per path. It is stateless.
type MicroMotiveScorer struct{}

// NewMicroMotiveScorer creates a motive scorer.
func NewMicroMotiveScorer() *MicroMotiveScorer {
	return &MicroMotiveScorer{}
}

// IdentifyMicroMotives returns the motives whose triggers fired for path, in
// rule order. Unknown paths yield an empty list.
func (m *MicroMotiveScorer) IdentifyMicroMotives(path model.PathType, in model.AssessmentInput) []model.MicroMotive {
	out := []model.MicroMotive{}
	rules, ok := motiveRules[path]
	if !ok {
		return out
	}
	lower := strings.ToLower(in.Text())
	for _, rule := range rules {
		strength := rule.base
		indicators := []string{}
		for _, t := range rule.triggers {
			if containsAny(lower, t.words...) {
				indicators = append(indicators, t.indicator)
				strength += t.delta
			}
		}
		if len(indicators) == 0 {
			continue
		}
		out = append(out, model.MicroMotive{
			MotiveType:    rule.motive,
			Strength:      math.Min(1, strength),
			Indicators:    indicators,
			Evidence:      motiveEvidence(lower, rule.motive),
			PathAlignment: path,
		})
	}
	return out
}

func motiveEvidence(lower string, motive model.MotiveType) []model.Evidence {
	switch {
	case motive == model.MotiveMastery && containsAny(lower, "algorithm", "optimize"):
		return []model.Evidence{{
			Type:        model.EvidenceCodeQuality,
			Description: "Technical depth indicators present",
			Source:      "content_analysis",
			Weight:      0.6,
		}}
	case motive == model.MotiveQuality && containsAny(lower, "test", "error"):
		return []model.Evidence{{
			Type:        model.EvidenceTesting,
			Description: "Quality-focused indicators present",
			Source:      "content_analysis",
			Weight:      0.6,
		}}
	default:
		return []model.Evidence{}
	}
}
