package utils

import (
	"encoding/json"
	"fmt"
)

// JSONSerialize renders v as indented JSON.
func JSONSerialize(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize json: %w", err)
	}
	return string(data), nil
}

// JSONDeserialize decodes s into a new T.
func JSONDeserialize[T any](s string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return out, fmt.Errorf("deserialize json: %w", err)
	}
	return out, nil
}

// IsValidJSON reports whether s is a single well-formed JSON document.
func IsValidJSON(s string) bool {
	return json.Valid([]byte(s))
}
