// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock removes a leading ``` or ```json fence and a trailing ``` fence.
// Text without fences is returned trimmed.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop a language tag such as "json" on the fence line.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		tag := strings.TrimSpace(text[:idx])
		if !strings.ContainsAny(tag, "{[ ") {
			text = text[idx+1:]
		}
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ExtractJSONObject returns the first balanced {...} object in text, or ""
// when none is found. Braces inside JSON strings are ignored.
func ExtractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
