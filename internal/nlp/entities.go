package nlp

import (
	"sort"
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
)

// span is a half-open token range with a label.
type span struct {
	start, end int
	label      string
}

func spanText(tokens []Token, s span) string {
	parts := make([]string, 0, s.end-s.start)
	for _, t := range tokens[s.start:s.end] {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// suffixSpans finds capitalized runs ending in an organization or event
// suffix ("Acme Labs", "Brand Design Summit"). Modifier tokens may appear
// inside the run ("Q3 Sales Conference").
func suffixSpans(lx *lexicon.Lexicon, tokens []Token) []span {
	var spans []span
	for i, t := range tokens {
		if !isCapitalized(t.Text) {
			continue
		}
		var label string
		switch {
		case lx.IsOrgSuffix(t.Text):
			label = LabelOrg
		case lx.IsEventSuffix(t.Text):
			label = LabelEvent
		default:
			continue
		}
		start := i
		for start > 0 {
			prev := tokens[start-1]
			if !isWord(prev.Text) || !isCapitalized(prev.Text) && !isModifier(lx, prev.Text) {
				break
			}
			// A sentence-initial verb is not part of the name.
			if start-1 == 0 && lx.IsVerb(prev.Lower()) {
				break
			}
			start--
		}
		if start == i {
			continue
		}
		spans = append(spans, span{start: start, end: i + 1, label: label})
	}
	return spans
}

func isModifier(lx *lexicon.Lexicon, w string) bool {
	_, ok := lx.Modifier(w)
	return ok
}

// covered marks token indexes inside any span.
func covered(n int, spans []span) []bool {
	out := make([]bool, n)
	for _, s := range spans {
		for i := s.start; i < s.end; i++ {
			out[i] = true
		}
	}
	return out
}

// entitiesInOrder converts spans to entities sorted by start token.
func entitiesInOrder(tokens []Token, spans []span) []Entity {
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	out := make([]Entity, 0, len(spans))
	for _, s := range spans {
		out = append(out, Entity{Text: spanText(tokens, s), Label: s.label})
	}
	return out
}
