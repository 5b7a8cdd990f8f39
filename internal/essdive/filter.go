// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package essdive

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ParseFilter normalizes a filter expression into its canonical JSON
// form. Input starting with "{" is treated as a JSON object, which
// supports operator queries like {"status": {"$eq": "active"}}; anything
// else is parsed as YAML key/value pairs. Either way the filter must be
// a mapping. An empty string normalizes to an empty string.
func ParseFilter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	if strings.HasPrefix(s, "{") {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			return marshalFilter(parsed)
		}
	}

	var parsed map[string]any
	if err := yaml.Unmarshal([]byte(s), &parsed); err != nil {
		return "", fmt.Errorf("invalid filter syntax: %w", err)
	}
	return marshalFilter(parsed)
}

func marshalFilter(parsed map[string]any) (string, error) {
	out, err := json.Marshal(parsed)
	if err != nil {
		return "", fmt.Errorf("encoding filter: %w", err)
	}
	return string(out), nil
}
