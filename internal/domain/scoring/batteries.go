package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/patterns"
)

func designBattery(_ *HeuristicScorer, text string, _ []patterns.Violation) []model.ScoringMetric {
	lower := strings.ToLower(text)

	arch := 50.0
	if strings.Contains(text, "class ") || strings.Contains(lower, "module") {
		arch += 15
	}
	if containsAny(lower, "pattern", "design") {
		arch += 10
	}
	arch = clamp(arch)

	thinking := 50.0
	if containsAny(lower, "consider", "think", "approach", "design") {
		thinking += 15
	}
	if containsAny(lower, "alternative", "option") {
		thinking += 10
	}
	thinking = clamp(thinking)

	archEvidence := []model.Evidence{}
	if strings.Contains(text, "class ") {
		archEvidence = append(archEvidence, model.Evidence{
			Type:        model.EvidenceArchitecture,
			Description: "Object-oriented structure present",
			Source:      "code_structure",
			Weight:      0.7,
		})
	}
	thinkingEvidence := []model.Evidence{}
	if containsAny(lower, "consider", "think") {
		thinkingEvidence = append(thinkingEvidence, model.Evidence{
			Type:        model.EvidenceArchitecture,
			Description: "Shows thoughtful design consideration",
			Source:      "content_analysis",
			Weight:      0.6,
		})
	}

	return []model.ScoringMetric{
		{
			Name:        "Architecture",
			Category:    string(model.PathDesign),
			Score:       arch,
			Weight:      0.4,
			Evidence:    archEvidence,
			Explanation: band(arch, 75, 55, "Well-structured architecture with clear organization", "Good architectural awareness", "Architecture could be more structured"),
			Confidence:  0.8,
		},
		{
			Name:        "Design Thinking",
			Category:    string(model.PathDesign),
			Score:       thinking,
			Weight:      0.3,
			Evidence:    thinkingEvidence,
			Explanation: band(thinking, 70, 50, "Demonstrates strong design thinking", "Shows good design awareness", "Design thinking could be more explicit"),
			Confidence:  0.75,
		},
	}
}

// readabilityWords mark lines that use descriptive identifiers.
var readabilityWords = []string{"name", "value", "result", "data", "item"}

func collaborationBattery(_ *HeuristicScorer, text string, _ []patterns.Violation) []model.ScoringMetric {
	docs := 40.0
	comments := strings.Count(text, "#") + strings.Count(text, "//") + strings.Count(text, "/*")
	if float64(comments) > float64(utf8.RuneCountInString(text))/50 {
		docs += 20
	}
	docstrings := containsAny(text, `"""`, "'''")
	if docstrings {
		docs += 15
	}
	docs = clamp(docs)

	lines := strings.Split(text, "\n")
	named := 0
	for _, line := range lines {
		if containsAny(strings.ToLower(line), readabilityWords...) {
			named++
		}
	}
	readability := 60.0
	if float64(named) > float64(len(lines))/10 {
		readability += 15
	}
	readability = clamp(readability)

	docEvidence := []model.Evidence{}
	if docstrings {
		docEvidence = append(docEvidence, model.Evidence{
			Type:        model.EvidenceDocumentation,
			Description: "Docstrings present in code",
			Source:      "code_analysis",
			Weight:      0.7,
		})
	}

	return []model.ScoringMetric{
		{
			Name:        "Documentation",
			Category:    string(model.PathCollaboration),
			Score:       docs,
			Weight:      0.3,
			Evidence:    docEvidence,
			Explanation: band(docs, 70, 50, "Good documentation practices demonstrated", "Some documentation present", "Documentation could be improved"),
			Confidence:  0.8,
		},
		{
			Name:     "Code Readability",
			Category: string(model.PathCollaboration),
			Score:    readability,
			Weight:   0.35,
			Evidence: []model.Evidence{{
				Type:        model.EvidenceCodeQuality,
				Description: "Code structure analyzed for readability",
				Source:      "code_analysis",
				Weight:      0.6,
			}},
			Explanation: band(readability, 70, 55, "Code is readable and well-structured", "Code readability is acceptable", "Code readability could be improved"),
			Confidence:  0.85,
		},
	}
}

func problemSolvingBattery(_ *HeuristicScorer, text string, _ []patterns.Violation) []model.ScoringMetric {
	lower := strings.ToLower(text)

	score := 50.0
	if containsAny(lower, "analyze", "analysis", "break", "down", "step") {
		score += 15
	}
	if containsAny(lower, "logic", "reasoning") {
		score += 10
	}
	score = clamp(score)

	evidence := []model.Evidence{}
	if containsAny(lower, "analyze", "break") {
		evidence = append(evidence, model.Evidence{
			Type:        model.EvidenceCodeQuality,
			Description: "Shows analytical approach",
			Source:      "content_analysis",
			Weight:      0.6,
		})
	}

	return []model.ScoringMetric{{
		Name:        "Analytical Thinking",
		Category:    string(model.PathProblemSolving),
		Score:       score,
		Weight:      0.3,
		Evidence:    evidence,
		Explanation: band(score, 70, 50, "Strong analytical thinking demonstrated", "Good analytical approach", "Analytical thinking could be more explicit"),
		Confidence:  0.8,
	}}
}
