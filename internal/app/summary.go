package app

import (
	"fmt"

	"github.com/okian/assessor/internal/domain/model"
)

const (
	strengthThreshold = 75.0
	strongFinding     = 80.0
	weakFinding       = 60.0
)

// pathScore is the weighted mean of metric scores, falling back to the plain
// mean when weights sum to zero.
func pathScore(metrics []model.ScoringMetric) float64 {
	if len(metrics) == 0 {
		return 0
	}
	var weighted, total, plain float64
	for _, m := range metrics {
		weighted += m.Score * m.Weight
		total += m.Weight
		plain += m.Score
	}
	if total == 0 {
		return plain / float64(len(metrics))
	}
	return weighted / total
}

func overallScore(scores []model.PathScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, ps := range scores {
		sum += ps.OverallScore
	}
	return sum / float64(len(scores))
}

func meanConfidence(confidences []float64) float64 {
	if len(confidences) == 0 {
		return defaultConfidence
	}
	sum := 0.0
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}

// dominantPath returns the first path holding the maximum score.
func dominantPath(scores []model.PathScore) *model.PathType {
	if len(scores) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].OverallScore > scores[best].OverallScore {
			best = i
		}
	}
	p := scores[best].Path
	return &p
}

func strengths(metrics []model.ScoringMetric) []string {
	out := []string{}
	for _, m := range metrics {
		if m.Score >= strengthThreshold {
			out = append(out, fmt.Sprintf("%s: %s", m.Name, m.Explanation))
		}
	}
	return out
}

func improvements(metrics []model.ScoringMetric) []string {
	out := []string{}
	for _, m := range metrics {
		if m.Score < strengthThreshold {
			out = append(out, fmt.Sprintf("%s: Consider enhancing this area (current score: %.0f)", m.Name, m.Score))
		}
	}
	return out
}

func summarize(overall float64, dominant *model.PathType, motives []model.MicroMotive) string {
	top := "multiple areas"
	if dominant != nil {
		top = string(*dominant)
	}
	summary := fmt.Sprintf("Assessment shows an overall score of %.1f/100. Strongest performance in %s. ", overall, top)
	if len(motives) == 0 {
		return summary
	}
	best := motives[0]
	for _, m := range motives[1:] {
		if m.Strength > best.Strength {
			best = m
		}
	}
	return summary + fmt.Sprintf("Primary micro-motive is %s with strength %.2f.", best.MotiveType, best.Strength)
}

func keyFindings(scores []model.PathScore) []string {
	out := []string{}
	for _, ps := range scores {
		switch {
		case ps.OverallScore >= strongFinding:
			out = append(out, fmt.Sprintf("Strong performance in %s (score: %.1f)", ps.Path, ps.OverallScore))
		case ps.OverallScore < weakFinding:
			out = append(out, fmt.Sprintf("Opportunity for growth in %s (score: %.1f)", ps.Path, ps.OverallScore))
		}
	}
	return out
}

func recommendations(scores []model.PathScore) []string {
	out := []string{}
	for _, ps := range scores {
		if len(ps.AreasForImprovement) > 0 {
			out = append(out, fmt.Sprintf("Focus on %s: %s", ps.Path, ps.AreasForImprovement[0]))
		}
	}
	return out
}

// uniquePaths drops repeated paths, keeping first occurrences in order.
func uniquePaths(paths []model.PathType) []model.PathType {
	seen := make(map[model.PathType]struct{}, len(paths))
	out := make([]model.PathType, 0, len(paths))
	for _, p := range paths {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
