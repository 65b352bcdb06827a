package llmgen

import (
	"encoding/json"
	"strings"
)

// ExtractJSON locates a JSON object embedded in free-form model output and
// parses it. A fenced ```json block wins when present; otherwise the
// substring from the first '{' to the last '}' is used. Leading or trailing
// commentary around the object is tolerated.
func ExtractJSON(text string) (map[string]any, error) {
	candidate, found := fencedJSONBlock(text)
	if !found {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start == -1 || end == -1 || end < start {
			return nil, &MalformedOutputError{Offset: -1, Snippet: snippet(text, 0)}
		}
		candidate = text[start : end+1]
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		offset := 0
		if syn, ok := err.(*json.SyntaxError); ok {
			offset = int(syn.Offset)
		}
		return nil, &MalformedOutputError{Offset: offset, Snippet: snippet(candidate, offset), Err: err}
	}
	return out, nil
}

func fencedJSONBlock(text string) (string, bool) {
	lower := strings.ToLower(text)
	start := strings.Index(lower, "```json")
	if start == -1 {
		return "", false
	}
	rest := text[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// snippet returns up to 80 characters of context around offset for error reports.
func snippet(text string, offset int) string {
	const radius = 40
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	start := offset - radius
	if start < 0 {
		start = 0
	}
	end := offset + radius
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
