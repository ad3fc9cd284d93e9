package nlp

import (
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
)

// verbLemma returns the base form of w when some inflection-stripped
// candidate is a known verb.
func verbLemma(lx *lexicon.Lexicon, w string) (string, bool) {
	w = strings.ToLower(w)
	for _, c := range verbCandidates(w) {
		if lx.IsVerb(c) {
			return c, true
		}
	}
	return w, false
}

func verbCandidates(w string) []string {
	out := []string{w}
	n := len(w)
	switch {
	case strings.HasSuffix(w, "ies") && n > 4:
		out = append(out, w[:n-3]+"y")
	case strings.HasSuffix(w, "ied") && n > 4:
		out = append(out, w[:n-3]+"y")
	case strings.HasSuffix(w, "ing") && n > 4:
		stem := w[:n-3]
		out = append(out, stem, stem+"e", undouble(stem))
	case strings.HasSuffix(w, "ed") && n > 3:
		stem := w[:n-2]
		out = append(out, stem, w[:n-1], undouble(stem))
	case strings.HasSuffix(w, "es") && n > 3:
		out = append(out, w[:n-2], w[:n-1])
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && n > 2:
		out = append(out, w[:n-1])
	}
	return out
}

// undouble strips a doubled final consonant ("planned" -> "plan").
func undouble(stem string) string {
	n := len(stem)
	if n >= 2 && stem[n-1] == stem[n-2] && !strings.ContainsRune("aeiou", rune(stem[n-1])) {
		return stem[:n-1]
	}
	return stem
}

// Singular returns a naive singular form of a lowercase noun.
func Singular(w string) string {
	n := len(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:n-3] + "y"
	case n > 3 && (strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes") || strings.HasSuffix(w, "xes")):
		return w[:n-2]
	case n > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us"):
		return w[:n-1]
	}
	return w
}

// lemma returns the base form of a token with the given coarse tag.
func lemma(lx *lexicon.Lexicon, text, pos string) string {
	lower := strings.ToLower(text)
	switch pos {
	case Verb:
		l, _ := verbLemma(lx, lower)
		return l
	case Noun:
		return Singular(lower)
	}
	return lower
}
