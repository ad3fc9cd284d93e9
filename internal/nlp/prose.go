package nlp

import (
	"sort"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
)

// ProseAnalyzer uses prose's averaged-perceptron tagger and its PERSON/GPE
// entity model, then adds organization and event names from the lexicon's
// suffix tables.
type ProseAnalyzer struct {
	lx    *lexicon.Lexicon
	model *prose.Model

	mu sync.Mutex
}

// NewProseAnalyzer returns a ProseAnalyzer over lx. The tagger and entity
// model are loaded here once and shared by every Analyze call.
func NewProseAnalyzer(lx *lexicon.Lexicon) *ProseAnalyzer {
	return &ProseAnalyzer{lx: lx, model: prose.ModelFromData(proseModelName)}
}

const proseModelName = "en-v2.0.0"

// Analyze implements Analyzer.
func (a *ProseAnalyzer) Analyze(text string) (Doc, error) {
	a.mu.Lock()
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.UsingModel(a.model))
	a.mu.Unlock()
	if err != nil {
		return Doc{}, err
	}

	ptoks := doc.Tokens()
	tokens := make([]Token, len(ptoks))
	for i, pt := range ptoks {
		pos := coarse(pt.Tag)
		// Quarter labels and weekdays come back as common nouns.
		if pos == Noun && (isModifier(a.lx, pt.Text) || a.lx.IsWeekday(pt.Text)) {
			pos = Propn
		}
		tokens[i] = Token{Text: pt.Text, Tag: pt.Tag, POS: pos, Lemma: lemma(a.lx, pt.Text, pos)}
	}

	spans := suffixSpans(a.lx, tokens)
	entities := entitiesInOrder(tokens, spans)
	inSuffix := make(map[string]bool, len(entities))
	for _, e := range entities {
		inSuffix[e.Text] = true
	}
	for _, pe := range doc.Entities() {
		if pe.Label == "" || inSuffix[pe.Text] {
			continue
		}
		entities = append(entities, Entity{Text: pe.Text, Label: pe.Label})
	}
	sortByOffset(text, entities)

	return Doc{
		Text:     text,
		Tokens:   tokens,
		Entities: entities,
		Chunks:   nounChunks(tokens),
	}, nil
}

// sortByOffset orders entities by first occurrence in text. Stable for ties.
func sortByOffset(text string, entities []Entity) {
	offset := func(e Entity) int {
		if i := strings.Index(text, e.Text); i >= 0 {
			return i
		}
		return len(text)
	}
	sort.SliceStable(entities, func(i, j int) bool {
		return offset(entities[i]) < offset(entities[j])
	})
}
