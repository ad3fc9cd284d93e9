package nlp

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// wordPattern splits text into words (with internal apostrophes) and single
// punctuation marks.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’]\p{L}+)*|[^\s\p{L}\p{N}]`)

// Tokenize splits text into word and punctuation tokens.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// isCapitalized reports whether s starts with an upper-case letter.
func isCapitalized(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// isWord reports whether s contains a letter or digit.
func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isAlpha reports whether s consists only of letters and apostrophes.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '\'' && r != '’' {
			return false
		}
	}
	return true
}
