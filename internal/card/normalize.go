package card

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// wordRegex matches runs of letters, digits and apostrophes.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}']+`)

// Normalize trims, lowercases and collapses internal whitespace to single spaces.
// Two notes are duplicates when their normalized descriptions are equal.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// Words returns the lowercase word tokens of s, punctuation dropped.
func Words(s string) []string {
	return wordRegex.FindAllString(strings.ToLower(s), -1)
}
