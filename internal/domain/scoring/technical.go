package scoring

import (
	"fmt"
	"strings"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/patterns"
)

// Code Quality density only counts once a submission has more than this
// many lines; short snippets are too small to judge.
const densityMinLines = 10

func technicalBattery(s *HeuristicScorer, text string, violations []patterns.Violation) []model.ScoringMetric {
	lower := strings.ToLower(text)

	quality := s.codeQualityScore(text, lower, violations)
	problem := problemSolvingScore(text, lower)
	testing := testingScore(lower)

	return []model.ScoringMetric{
		{
			Name:        "Code Quality",
			Category:    string(model.PathTechnical),
			Score:       quality,
			Weight:      0.3,
			Evidence:    s.codeQualityEvidence(text, violations),
			Explanation: s.explainCodeQuality(quality, len(violations)),
			Confidence:  0.85,
		},
		{
			Name:        "Problem Solving",
			Category:    string(model.PathTechnical),
			Score:       problem,
			Weight:      0.3,
			Evidence:    problemSolvingEvidence(lower),
			Explanation: band(problem, 75, 55, "Demonstrates strong problem-solving with clear approach", "Shows good problem-solving fundamentals", "Problem-solving approach could be more systematic"),
			Confidence:  0.8,
		},
		{
			Name:        "Testing",
			Category:    string(model.PathTechnical),
			Score:       testing,
			Weight:      0.2,
			Evidence:    testingEvidence(lower),
			Explanation: band(testing, 70, 40, "Good testing awareness and practices", "Some testing present but could be more comprehensive", "Testing approach needs development"),
			Confidence:  0.75,
		},
	}
}

func (s *HeuristicScorer) codeQualityScore(text, lower string, violations []patterns.Violation) float64 {
	score := 50.0
	if containsAny(text, "def ", "function ", "class ") {
		score += 10
	}
	if containsAny(text, "import ", "from ") {
		score += 5
	}
	score += densityBonus(text)
	if containsAny(text, "try:", "except") || strings.Contains(lower, "error") {
		score += 10
	}
	if containsAny(lower, "test", "assert") {
		score += 10
	}
	if strings.Count(text, "print(") > 5 {
		score -= 5
	}
	if containsAny(lower, "todo", "fixme") {
		score -= 3
	}
	if len(violations) > 0 && s.patternChecks {
		score -= s.Penalty(violations)
	}
	return clamp(score)
}

// densityBonus rewards submissions whose lines are mostly logic rather than
// blanks and comments.
func densityBonus(text string) float64 {
	lines := strings.Split(text, "\n")
	if len(lines) <= densityMinLines {
		return 0
	}
	logic := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			logic++
		}
	}
	density := float64(logic) / float64(max(len(lines), 1))
	switch {
	case density > 0.7:
		return 8
	case density > 0.5:
		return 5
	default:
		return 0
	}
}

func (s *HeuristicScorer) codeQualityEvidence(text string, violations []patterns.Violation) []model.Evidence {
	evidence := []model.Evidence{}
	if containsAny(text, "def ", "function ") {
		evidence = append(evidence, model.Evidence{
			Type:        model.EvidenceCodeQuality,
			Description: "Code uses functions/methods for organization",
			Source:      "code_structure",
			Weight:      0.7,
		})
	}
	if containsAny(text, "try:", "except") {
		evidence = append(evidence, model.Evidence{
			Type:        model.EvidenceCodeQuality,
			Description: "Error handling present in code",
			Source:      "error_handling",
			Weight:      0.8,
		})
	}
	if len(violations) == 0 || !s.patternChecks {
		return evidence
	}
	for i, v := range violations {
		if i == maxViolationEvidence {
			break
		}
		evidence = append(evidence, model.Evidence{
			Type:        model.EvidenceCodeQuality,
			Description: fmt.Sprintf("Pattern violation: %s - %s", v.Pattern, v.Description),
			Source:      "pattern_checks",
			Weight:      v.Severity.EvidenceWeight(),
			Metadata:    v.Metadata(),
		})
	}
	return evidence
}

func (s *HeuristicScorer) explainCodeQuality(score float64, violationCount int) string {
	base := band(score, 80, 60,
		"Code demonstrates strong quality with good structure and practices",
		"Code shows solid fundamentals with room for improvement",
		"Code quality could be enhanced with better structure and practices",
	)
	if violationCount == 0 || !s.patternChecks {
		return base
	}
	plural := "s"
	if violationCount == 1 {
		plural = ""
	}
	return fmt.Sprintf("%s Pattern checks flagged %d potential issue%s.", base, violationCount, plural)
}

func problemSolvingScore(text, lower string) float64 {
	score := 50.0
	if containsAny(lower, "algorithm", "complexity", "optimize", "efficient") {
		score += 15
	}
	if containsAny(lower, "loop", "iterate", "recursion") {
		score += 10
	}
	if containsAny(text, "if ", "else") {
		score += 5
	}
	return clamp(score)
}

func problemSolvingEvidence(lower string) []model.Evidence {
	if !containsAny(lower, "optimize", "efficient") {
		return []model.Evidence{}
	}
	return []model.Evidence{{
		Type:        model.EvidenceCodeQuality,
		Description: "Shows awareness of optimization",
		Source:      "code_analysis",
		Weight:      0.7,
	}}
}

func testingScore(lower string) float64 {
	score := 30.0
	if strings.Contains(lower, "test") {
		score += 20
	}
	if strings.Contains(lower, "assert") {
		score += 15
	}
	if containsAny(lower, "mock", "stub") {
		score += 10
	}
	return clamp(score)
}

func testingEvidence(lower string) []model.Evidence {
	if !strings.Contains(lower, "test") {
		return []model.Evidence{}
	}
	return []model.Evidence{{
		Type:        model.EvidenceTesting,
		Description: "Testing mentioned or present",
		Source:      "code_analysis",
		Weight:      0.6,
	}}
}
