package ingest

import (
	"strings"
	"unicode"
)

// Slug derives an article ID from a title: lowercase, non-alphanumeric runs
// collapsed to single hyphens, trimmed. Returns "" when the title has no
// usable characters, in which case callers fall back to a random ID.
func Slug(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
