// Package corpus provides corpus filtering helpers.
package corpus

import (
	"strings"
)

// FilterFunc returns true when a character should be kept.
type FilterFunc func(rune) bool

// FilterFor returns the named filter. Unknown or empty names keep everything.
func FilterFor(name string) FilterFunc {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ascii":
		return keepPrintableASCII
	case "letters":
		return keepLowerLetters
	default:
		return func(rune) bool { return true }
	}
}

// Apply drops every rune rejected by filter.
func Apply(text string, filter FilterFunc) string {
	if filter == nil {
		return text
	}
	return strings.Map(func(r rune) rune {
		if filter(r) {
			return r
		}
		return -1
	}, text)
}

func keepPrintableASCII(r rune) bool {
	return r >= ' ' && r <= '~'
}

func keepLowerLetters(r rune) bool {
	return r == ' ' || (r >= 'a' && r <= 'z')
}
