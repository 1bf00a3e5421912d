package utils

import (
	"unicode"
	"unicode/utf8"
)

// IsSeparator checks if a rune splits a destination term into tokens
func IsSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == '-' || r == '.' || r == '/' || r == '(' || r == ')' || r == '\''
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// IsSearchable reports whether text is long enough to run a search for.
func IsSearchable(text string, minLen int) bool {
	return RuneLen(text) >= minLen
}

// TokenStarts returns the rune offsets where a token begins in runes.
// A token begins at offset 0 or right after a separator.
func TokenStarts(runes []rune) []int {
	starts := make([]int, 0, 4)
	prevSep := true
	for i, r := range runes {
		sep := IsSeparator(r)
		if !sep && prevSep {
			starts = append(starts, i)
		}
		prevSep = sep
	}
	return starts
}

// TokenEnd returns the offset just past the token that starts at start.
func TokenEnd(runes []rune, start int) int {
	end := start
	for end < len(runes) && !IsSeparator(runes[end]) {
		end++
	}
	return end
}
