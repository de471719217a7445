package patterns

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRules reads a rule table from a YAML mapping of
// name -> {regex, description, severity}. The file's key order becomes
// scan order.
func LoadRules(path string) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadRules, err)
	}
	rules, err := ParseRules(raw)
	if err != nil {
		return nil, err
	}
	return NewRuleSet(rules...)
}

// ParseRules decodes a YAML rule table without compiling it.
func ParseRules(raw []byte) ([]Rule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadRules, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrLoadRules)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping at line %d", ErrLoadRules, root.Line)
	}
	rules := make([]Rule, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		var r Rule
		if err := val.Decode(&r); err != nil {
			return nil, fmt.Errorf("%w: rule %q: %v", ErrLoadRules, key.Value, err)
		}
		r.Name = key.Value
		rules = append(rules, r)
	}
	return rules, nil
}
