package patterns

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/okian/assessor/pkg/metrics"
)

// ViolationConfidence is attached to every detected violation.
const ViolationConfidence = 0.8

// DefaultMatchTimeout bounds backtracking of one rule on one line. The
// built-in rules finish in microseconds; only pathological custom rules
// come near it.
const DefaultMatchTimeout = time.Second

// Violation is one rule match on one line.
type Violation struct {
	Pattern     string   `json:"pattern"`
	Line        int      `json:"line"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"`
}

// Metadata renders the violation as a loosely typed map for evidence.
func (v Violation) Metadata() map[string]any {
	return map[string]any{
		"pattern":     v.Pattern,
		"line":        v.Line,
		"code":        v.Code,
		"description": v.Description,
		"severity":    string(v.Severity),
		"confidence":  v.Confidence,
	}
}

// ToMetadata converts violations for the result metadata block.
func ToMetadata(violations []Violation) []map[string]any {
	out := make([]map[string]any, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Metadata())
	}
	return out
}

type compiledRule struct {
	Rule
	re *regexp2.Regexp
}

// RuleSet is an ordered, compiled rule table. It is immutable after
// construction and safe for concurrent use.
type RuleSet struct {
	rules   []compiledRule
	timeout time.Duration
}

// NewRuleSet compiles rules in the given order.
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	seen := make(map[string]struct{}, len(rules))
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidRule)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRule, r.Name)
		}
		seen[r.Name] = struct{}{}
		if !r.Severity.Valid() {
			return nil, fmt.Errorf("%w: %s: unknown severity %q", ErrInvalidRule, r.Name, r.Severity)
		}
		re, err := compile(r, DefaultMatchTimeout)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{Rule: r, re: re})
	}
	return &RuleSet{rules: compiled, timeout: DefaultMatchTimeout}, nil
}

func compile(r Rule, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(r.Regex, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.Name, err)
	}
	re.MatchTimeout = timeout
	return re, nil
}

// WithMatchTimeout returns a copy of the set whose rules give up after d per
// line. Non-positive d keeps the current timeout.
func (s *RuleSet) WithMatchTimeout(d time.Duration) (*RuleSet, error) {
	if d <= 0 || d == s.timeout {
		return s, nil
	}
	compiled := make([]compiledRule, 0, len(s.rules))
	for _, r := range s.rules {
		re, err := compile(r.Rule, d)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{Rule: r.Rule, re: re})
	}
	return &RuleSet{rules: compiled, timeout: d}, nil
}

// MatchTimeout reports the per-line match timeout.
func (s *RuleSet) MatchTimeout() time.Duration { return s.timeout }

// Rules returns the uncompiled rules in scan order.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Rule
	}
	return out
}

// Len returns the number of rules.
func (s *RuleSet) Len() int { return len(s.rules) }

var (
	defaultOnce sync.Once
	defaultSet  *RuleSet
)

// Default returns the compiled built-in rule table.
func Default() *RuleSet {
	defaultOnce.Do(func() {
		set, err := NewRuleSet(DefaultRules()...)
		if err != nil {
			panic(fmt.Sprintf("patterns: built-in rules do not compile: %v", err))
		}
		defaultSet = set
	})
	return defaultSet
}

// Detect scans code line by line. Results are ordered by line, then by rule
// order, with at most one violation per (line, rule). A nil set uses the
// built-in rules.
func Detect(code string, rules *RuleSet) []Violation {
	if rules == nil {
		rules = Default()
	}
	var out []Violation
	if code == "" {
		return out
	}
	for i, line := range strings.Split(code, "\n") {
		for _, r := range rules.rules {
			ok, err := r.re.MatchString(line)
			if err != nil {
				// regexp2 only fails a match on timeout.
				metrics.RecordPatternTimeout(r.Name)
				continue
			}
			if !ok {
				continue
			}
			out = append(out, Violation{
				Pattern:     r.Name,
				Line:        i + 1,
				Code:        strings.TrimSpace(line),
				Description: r.Description,
				Severity:    r.Severity,
				Confidence:  ViolationConfidence,
			})
		}
	}
	return out
}
