package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Clean strips any markup the model slipped into a field and collapses
// runs of whitespace. The result is plain text; templates escape it again.
func Clean(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := html.UnescapeString(textSanitizer().Sanitize(trimmed))
	return strings.Join(strings.Fields(cleaned), " ")
}

// CleanAll cleans every item and drops the ones left empty.
func CleanAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if c := Clean(it); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
