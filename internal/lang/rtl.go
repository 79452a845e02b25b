// Package lang classifies text by script for language-consistency policy.
package lang

// IsRTL reports whether text contains at least one code point in the Arabic
// Unicode block (U+0600..U+06FF), the block Urdu is written in. Empty input
// returns false.
func IsRTL(text string) bool {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}
