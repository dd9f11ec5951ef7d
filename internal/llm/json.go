package llm

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when a model reply holds no JSON object.
var ErrNoJSON = errors.New("no JSON object found in model response")

// ExtractJSON pulls the JSON payload out of a model reply. A fenced ```json
// block wins; otherwise the span from the first '{' to the last '}' is used.
func ExtractJSON(text string) (string, error) {
	if start := strings.Index(text, "```json"); start >= 0 {
		rest := text[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end]), nil
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1], nil
	}

	return "", ErrNoJSON
}
