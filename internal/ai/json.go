package ai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON returns the JSON object carried by a model reply. Models in
// JSON mode usually return a bare object, but fenced or prose-wrapped replies
// still show up.
func ExtractJSON(s string) string {
	s = stripCodeFences(s)
	if s == "" || json.Valid([]byte(s)) {
		return s
	}
	if obj := findFirstJSON(s); obj != "" {
		return obj
	}
	return s
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// findFirstJSON scans for the first balanced {...} object, skipping braces
// inside string literals.
func findFirstJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
