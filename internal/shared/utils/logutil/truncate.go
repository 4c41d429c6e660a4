package logutil

import "unicode/utf8"

const ellipsis = "..."

// Truncate shortens s to at most maxRunes runes for log fields, appending an
// ellipsis when anything was cut. Multi-byte runes are never split.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ellipsis
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + ellipsis
		}
		n++
	}
	return s
}
