package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
)

// Title title-cases each word of s, keeping known acronyms in their
// canonical spelling ("q3 ai plan" -> "Q3 AI Plan").
func Title(lx *lexicon.Lexicon, s string) string {
	caser := cases.Title(language.English)
	words := strings.Fields(s)
	for i, w := range words {
		if a, ok := lx.Acronym(w); ok {
			words[i] = a
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// Capitalize upper-cases the first letter of s and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
