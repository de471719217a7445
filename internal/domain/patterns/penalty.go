package patterns

import "math"

// Penalty sums the weight of the first violation of each pattern and clamps
// the total to [0, max].
func Penalty(violations []Violation, weights SeverityWeights, max float64) float64 {
	if len(violations) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(violations))
	total := 0.0
	for _, v := range violations {
		if _, ok := seen[v.Pattern]; ok {
			continue
		}
		seen[v.Pattern] = struct{}{}
		total += weights[v.Severity]
	}
	return math.Max(0, math.Min(total, max))
}
