package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Persona is one reviewer voice on the council.
type Persona struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Focus string `json:"focus"`
}

// SystemPrompt renders the persona instructions.
func (p Persona) SystemPrompt() string {
	return fmt.Sprintf("You are %s, %s. Review submissions with a focus on %s. "+
		"Be specific and critical, and always finish with a line of the form 'Score: N/100'.",
		p.Name, p.Role, p.Focus)
}

var presets = map[string][]Persona{
	"coding": {
		{Name: "The Architect", Role: "a principal engineer", Focus: "structure, modularity and design trade-offs"},
		{Name: "The Reviewer", Role: "a meticulous code reviewer", Focus: "correctness, error handling and edge cases"},
		{Name: "The Tester", Role: "a quality engineer", Focus: "testability and test coverage"},
	},
	"general": {
		{Name: "The Analyst", Role: "a rigorous analyst", Focus: "clarity of reasoning and evidence"},
		{Name: "The Mentor", Role: "an experienced mentor", Focus: "strengths worth building on and concrete next steps"},
	},
}

// Personas returns the persona preset for domain.
func Personas(domain string) ([]Persona, error) {
	ps, ok := presets[strings.ToLower(strings.TrimSpace(domain))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownDomain, domain, strings.Join(Domains(), ", "))
	}
	out := make([]Persona, len(ps))
	copy(out, ps)
	return out, nil
}

// Domains lists the known presets in sorted order.
func Domains() []string {
	out := make([]string, 0, len(presets))
	for d := range presets {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
