package itinerary

import (
	"encoding/json"
	"strings"

	"ai-trip-planner/internal/llm"
)

// ParseContent turns stored or freshly generated model output into a value
// for Normalize. It unwraps a Gemini response envelope, strips Markdown code
// fences and extracts the embedded JSON. Text without JSON is returned as is,
// which Normalize reports as ShapeRawString.
func ParseContent(raw string) any {
	text := strings.TrimSpace(raw)
	if text == "" {
		return raw
	}

	if v, ok := decode(text); ok {
		if inner, ok := envelopeText(v); ok {
			return ParseContent(inner)
		}
		return v
	}

	unfenced := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "```json", ""), "```", ""))
	if v, ok := decode(unfenced); ok {
		return v
	}

	if obj, err := llm.ExtractJSON(text); err == nil {
		if v, ok := decode(obj); ok && structured(v) {
			return v
		}
	}
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		if v, ok := decode(text[start : end+1]); ok && structured(v) {
			return v
		}
	}

	return raw
}

// structured reports whether a value found inside prose looks like a plan:
// a non-empty object, or a non-empty array made only of objects. Citations
// such as "[1]" or a stray "{}" stay part of the text.
func structured(v any) bool {
	switch val := v.(type) {
	case map[string]any:
		return len(val) > 0
	case []any:
		if len(val) == 0 {
			return false
		}
		for _, item := range val {
			if _, ok := item.(map[string]any); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func decode(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// envelopeText reads candidates[0].content.parts[0].text.
func envelopeText(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	candidates, ok := obj["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return "", false
	}
	first, ok := candidates[0].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := first["content"].(map[string]any)
	if !ok {
		return "", false
	}
	parts, ok := content["parts"].([]any)
	if !ok || len(parts) == 0 {
		return "", false
	}
	part, ok := parts[0].(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := part["text"].(string)
	return text, ok
}
