package ai

import (
	"encoding/json"
	"strings"
)

// extractJSON pulls the outermost JSON value delimited by open and close
// out of model text, ignoring code fences and surrounding prose.
func extractJSON(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func decodeObject(text string, v any) bool {
	raw, ok := extractJSON(text, '{', '}')
	return ok && json.Unmarshal([]byte(raw), v) == nil
}

func decodeArray(text string, v any) bool {
	raw, ok := extractJSON(text, '[', ']')
	return ok && json.Unmarshal([]byte(raw), v) == nil
}
