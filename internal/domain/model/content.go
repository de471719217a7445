package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// textKeys are consulted in priority order; the first present key wins.
var textKeys = []string{"code", "text", "content", "solution", "submission"}

// ExtractText flattens submission content into a single string. When none of
// the well-known keys exist the whole mapping is rendered instead, so
// malformed content never fails extraction.
func ExtractText(content map[string]any) string {
	if len(content) == 0 {
		return ""
	}
	for _, key := range textKeys {
		v, ok := content[key]
		if !ok {
			continue
		}
		return stringify(v)
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Sprint(content)
	}
	return string(raw)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, "\n")
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprint(t)
	}
}
