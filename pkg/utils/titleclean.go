package utils

import (
	"regexp"
	"strings"
)

var (
	parentheticalRe = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]\s*`)
	bySuffixRe      = regexp.MustCompile(`(?i)\s+by\s+[\w.\- ]+$`)

	marketingSuffixes = []string{
		"Annotated",
		"Classic",
		"Unabridged",
		"Illustrated",
		"Original",
	}
)

// CleanTitle normalizes a book title before it is used as an upstream search
// query: subtitles after " - " or ": ", parenthetical and bracketed suffixes,
// a trailing "By <author>", and known marketing suffixes are all stripped.
func CleanTitle(title string) string {
	t := strings.TrimSpace(title)

	if i := strings.Index(t, " - "); i > 0 {
		t = t[:i]
	}
	if i := strings.Index(t, ":"); i > 0 {
		t = t[:i]
	}

	t = parentheticalRe.ReplaceAllString(t, " ")
	t = bySuffixRe.ReplaceAllString(t, "")

	changed := true
	for changed {
		changed = false
		for _, suffix := range marketingSuffixes {
			trimmed := strings.TrimSpace(t)
			if len(trimmed) > len(suffix) && strings.EqualFold(trimmed[len(trimmed)-len(suffix):], suffix) {
				t = strings.TrimSpace(trimmed[:len(trimmed)-len(suffix)])
				changed = true
			}
		}
	}

	return strings.Join(strings.Fields(t), " ")
}
