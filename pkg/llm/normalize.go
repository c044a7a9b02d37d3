package llm

import (
	"bytes"
	"encoding/json"
)

// MaxRawSummary caps the fallback dump of an unrecognized reply, in characters.
const MaxRawSummary = 1000

// NormalizeSummary extracts the summary text from a summarization reply.
//
// Accepted layouts, in order: a list of objects carrying summary_text, a single
// object carrying summary_text, a bare string, and a list of strings. The first
// element of a list wins. Anything else yields a dump of the raw reply capped at
// MaxRawSummary characters with ShapeRaw.
func NormalizeSummary(raw []byte) (string, Shape) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return dumpRaw(raw), ShapeRaw
	}

	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			break
		}
		switch first := t[0].(type) {
		case map[string]any:
			if s, ok := first["summary_text"].(string); ok {
				return s, ShapeObjectList
			}
		case string:
			return first, ShapeStringList
		}
	case map[string]any:
		if s, ok := t["summary_text"].(string); ok {
			return s, ShapeObject
		}
	case string:
		return t, ShapeString
	}
	return dumpRaw(raw), ShapeRaw
}

func dumpRaw(raw []byte) string {
	var buf bytes.Buffer
	text := string(bytes.TrimSpace(raw))
	if err := json.Compact(&buf, raw); err == nil {
		text = buf.String()
	}
	return truncateRunes(text, MaxRawSummary)
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
