package nlp

import (
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
)

// RuleAnalyzer tags tokens from the lexicon's closed-class and verb tables
// and recognizes entities from capitalization. Output depends only on the
// input text and the lexicon.
type RuleAnalyzer struct {
	lx *lexicon.Lexicon
}

// NewRuleAnalyzer returns a RuleAnalyzer over lx.
func NewRuleAnalyzer(lx *lexicon.Lexicon) *RuleAnalyzer {
	return &RuleAnalyzer{lx: lx}
}

// Analyze implements Analyzer.
func (a *RuleAnalyzer) Analyze(text string) (Doc, error) {
	words := Tokenize(text)
	tokens := make([]Token, len(words))
	prev := ""
	sentenceStart := true
	for i, w := range words {
		pos := a.tag(w, prev, sentenceStart)
		tokens[i] = Token{Text: w, POS: pos, Tag: penn(pos), Lemma: lemma(a.lx, w, pos)}
		if pos != Punct {
			prev = pos
		}
		sentenceStart = w == "." || w == "!" || w == "?"
	}

	spans := suffixSpans(a.lx, tokens)
	spans = append(spans, a.personSpans(tokens, covered(len(tokens), spans))...)

	return Doc{
		Text:     text,
		Tokens:   tokens,
		Entities: entitiesInOrder(tokens, spans),
		Chunks:   nounChunks(tokens),
	}, nil
}

func (a *RuleAnalyzer) tag(w, prev string, sentenceStart bool) string {
	lx := a.lx
	lower := strings.ToLower(w)
	switch {
	case !isWord(w):
		return Punct
	case isNumber(w):
		return Num
	case isModifier(lx, w) || lx.IsWeekday(lower):
		return Propn
	case lx.IsDeterminer(lower) && lower != "her":
		return Det
	case lx.IsPronounWord(lower):
		return Pron
	case lx.IsAuxiliary(lower):
		return Aux
	case lx.IsParticle(lower):
		return Part
	case lx.IsPreposition(lower):
		return Adp
	case lx.IsConjunction(lower):
		return Cconj
	case lx.IsAdverb(lower):
		return Adv
	case lx.IsAdjective(lower):
		return Adj
	}

	if _, ok := verbLemma(lx, lower); ok {
		if lx.IsAmbiguousNoun(Singular(lower)) && nominalContext(prev) {
			return Noun
		}
		return Verb
	}

	switch {
	case isCapitalized(w) && !sentenceStart:
		return Propn
	case isCapitalized(w) && !lx.IsKnown(lower):
		return Propn
	case strings.HasSuffix(lower, "ly") && len(lower) > 4:
		return Adv
	}
	return Noun
}

// nominalContext reports whether a word after a token tagged prev reads as a noun.
func nominalContext(prev string) bool {
	switch prev {
	case Det, Adj, Adp, Num, Propn, Noun:
		return true
	}
	return false
}

// personSpans groups consecutive capitalized words that no vocabulary table
// knows into PERSON entities.
func (a *RuleAnalyzer) personSpans(tokens []Token, skip []bool) []span {
	var spans []span
	start := -1
	for i, t := range tokens {
		if !skip[i] && a.nameLike(t) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, span{start: start, end: i, label: LabelPerson})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{start: start, end: len(tokens), label: LabelPerson})
	}
	return spans
}

func (a *RuleAnalyzer) nameLike(t Token) bool {
	if !isAlpha(t.Text) || !isCapitalized(t.Text) {
		return false
	}
	lower := t.Lower()
	if a.lx.IsKnown(lower) || a.lx.IsPronoun(lower) {
		return false
	}
	if _, ok := a.lx.Acronym(lower); ok {
		return false
	}
	if _, ok := verbLemma(a.lx, lower); ok {
		return false
	}
	return true
}
