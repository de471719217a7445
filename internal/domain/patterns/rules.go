// Package patterns detects anti-pattern violations in submitted code and
// converts them into bounded score penalties.
package patterns

// Severity ranks how harmful a matched anti-pattern is.
type Severity string

// Known severities.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// EvidenceWeight is the weight given to evidence built from a violation.
func (s Severity) EvidenceWeight() float64 {
	switch s {
	case SeverityCritical:
		return 1.0
	case SeverityHigh:
		return 0.9
	case SeverityMedium:
		return 0.7
	case SeverityLow:
		return 0.5
	default:
		return 0.6
	}
}

// SeverityWeights maps a severity to penalty points. Missing severities
// weigh zero.
type SeverityWeights map[Severity]float64

// Default penalty configuration.
const (
	DefaultLowPenalty      = 1.0
	DefaultMediumPenalty   = 3.0
	DefaultHighPenalty     = 5.0
	DefaultCriticalPenalty = DefaultHighPenalty
	DefaultMaxPenalty      = 15.0
)

// DefaultSeverityWeights returns a fresh copy of the default weights.
func DefaultSeverityWeights() SeverityWeights {
	return SeverityWeights{
		SeverityLow:      DefaultLowPenalty,
		SeverityMedium:   DefaultMediumPenalty,
		SeverityHigh:     DefaultHighPenalty,
		SeverityCritical: DefaultCriticalPenalty,
	}
}

// Rule is an uncompiled anti-pattern definition.
type Rule struct {
	Name        string   `json:"name" yaml:"-"`
	Regex       string   `json:"regex" yaml:"regex"`
	Description string   `json:"description" yaml:"description"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// DefaultRules returns the built-in rule table in scan order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "numpy_json_serialization",
			Regex:       `json\.dumps\([^)]*np\.|json\.dumps\([^)]*numpy`,
			Description: "NumPy types in JSON serialization (use .item() or .tolist())",
			Severity:    SeverityHigh,
		},
		{
			Name:        "numpy_nan_inf",
			Regex:       `np\.(isnan|isinf)\([^)]*\)\s*(?!if|and|or)`,
			Description: "NumPy NaN/Inf not checked before JSON serialization",
			Severity:    SeverityHigh,
		},
		{
			Name:        "bounds_checking",
			Regex:       `\w+\[0\](?!\s+if\s+\w+)`,
			Description: "List access without bounds checking",
			Severity:    SeverityMedium,
		},
		{
			Name:        "specific_exceptions",
			Regex:       `except\s*:`,
			Description: "Bare except clause (should catch specific exceptions)",
			Severity:    SeverityMedium,
		},
		{
			Name:        "structured_logging",
			Regex:       `\bprint\s*\(`,
			Description: "Using print instead of logging",
			Severity:    SeverityLow,
		},
		{
			Name:        "temp_file_handling",
			Regex:       `tempfile\.mktemp\(`,
			Description: "Using deprecated mktemp function (use mkstemp or NamedTemporaryFile)",
			Severity:    SeverityHigh,
		},
		{
			Name:        "large_file_loading",
			Regex:       `\.read\(\)(?!\s*#\s*chunk)`,
			Description: "Loading entire file into memory (consider streaming for large files)",
			Severity:    SeverityLow,
		},
		{
			Name:        "fastapi_streaming",
			Regex:       `await\s+\w+\.read\(\)(?!\s*#\s*chunk)`,
			Description: "FastAPI upload loaded entirely into memory (consider streaming)",
			Severity:    SeverityMedium,
		},
		{
			Name:        "metadata_logic",
			Regex:       `if\s+['"].*['"]\s+in\s+\w+\.lower\(\)`,
			Description: "String matching for business logic (consider metadata-based approach)",
			Severity:    SeverityLow,
		},
	}
}
