// Package envelope names and selects the envelope a note belongs to.
package envelope

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/embed"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/nlp"
)

// DefaultGeneralName is returned when no rule produces a name.
const DefaultGeneralName = "General"

// naming carries one note through the rule chain.
type naming struct {
	ctx      context.Context
	text     string
	doc      nlp.Doc
	existing []string
}

// rule returns a name, or "" to defer to the next rule.
type rule func(n *Namer, in *naming) (string, error)

// Namer derives a short thematic name for a note.
type Namer struct {
	analyzer nlp.Analyzer
	lx       *lexicon.Lexicon
	embedder embed.Embedder

	// ReuseThreshold is the minimum combined score for reusing an existing name.
	ReuseThreshold float64

	rules []rule
}

// NewNamer returns a Namer with the standard rule chain.
func NewNamer(analyzer nlp.Analyzer, lx *lexicon.Lexicon, embedder embed.Embedder, reuseThreshold float64) *Namer {
	return &Namer{
		analyzer:       analyzer,
		lx:             lx,
		embedder:       embedder,
		ReuseThreshold: reuseThreshold,
		rules: []rule{
			reuseSimilar,
			entityTopic,
			topicModifier,
			category,
			nounChunk,
			verbLemma,
		},
	}
}

// Name returns a name for text. existing lists names that may be reused when
// close enough to text; pass nil to always derive a fresh name.
func (n *Namer) Name(ctx context.Context, text string, existing []string) (string, error) {
	doc, err := n.analyzer.Analyze(text)
	if err != nil {
		return "", err
	}
	in := &naming{ctx: ctx, text: text, doc: doc, existing: existing}
	for _, r := range n.rules {
		name, err := r(n, in)
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
	}
	return DefaultGeneralName, nil
}

// Suggestion is the best existing name for a text and its score.
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Reuse bool    `json:"reuse"`
}

// Suggest scores text against every existing name and reports the best one,
// and whether it clears the reuse threshold.
func (n *Namer) Suggest(ctx context.Context, text string, existing []string) (Suggestion, error) {
	best, score, err := n.bestExisting(ctx, text, existing)
	if err != nil || best == "" {
		return Suggestion{}, err
	}
	return Suggestion{Name: nlp.Title(n.lx, best), Score: score, Reuse: score >= n.ReuseThreshold}, nil
}

// bestExisting returns the existing name with the highest mean of embedding
// similarity and character sequence ratio. Earlier names win ties.
func (n *Namer) bestExisting(ctx context.Context, text string, existing []string) (string, float64, error) {
	var best string
	bestScore := 0.0
	for _, name := range existing {
		sim, err := embed.Similarity(ctx, n.embedder, text, name)
		if err != nil {
			return "", 0, err
		}
		score := (sim + SequenceRatio(text, name)) / 2
		if score > bestScore {
			best, bestScore = name, score
		}
	}
	return best, bestScore, nil
}

// SequenceRatio is the difflib similarity ratio of the lowercased strings,
// compared character by character.
func SequenceRatio(a, b string) float64 {
	m := difflib.NewMatcher(
		strings.Split(strings.ToLower(a), ""),
		strings.Split(strings.ToLower(b), ""),
	)
	return m.Ratio()
}

func reuseSimilar(n *Namer, in *naming) (string, error) {
	if len(in.existing) == 0 {
		return "", nil
	}
	best, score, err := n.bestExisting(in.ctx, in.text, in.existing)
	if err != nil {
		return "", err
	}
	if best != "" && score >= n.ReuseThreshold {
		return nlp.Title(n.lx, best), nil
	}
	return "", nil
}

// entityTopic uses an organization, work or event name that mentions a topic.
func entityTopic(n *Namer, in *naming) (string, error) {
	for _, e := range in.doc.EntitiesWithLabel(nlp.LabelOrg, nlp.LabelWorkOfArt, nlp.LabelEvent) {
		lower := strings.ToLower(e.Text)
		for _, topic := range n.lx.Topics() {
			if strings.Contains(lower, strings.ToLower(topic)) {
				return nlp.Title(n.lx, strings.TrimSpace(e.Text)), nil
			}
		}
	}
	return "", nil
}

// topicModifier combines the last topic word with the last modifier
// ("Q3 Budget", "2025 Plan").
func topicModifier(n *Namer, in *naming) (string, error) {
	var topic, modifier string
	for _, t := range in.doc.Tokens {
		if n.lx.IsTopic(t.Lower()) {
			topic = nlp.Title(n.lx, t.Lower())
		}
		if m, ok := n.lx.Modifier(t.Text); ok {
			modifier = m
		}
	}
	if topic == "" {
		return "", nil
	}
	if modifier != "" {
		return modifier + " " + topic, nil
	}
	return topic, nil
}

// category maps the note's words onto the category table. Words match whole,
// ignoring plural endings.
func category(n *Namer, in *naming) (string, error) {
	present := make(map[string]bool)
	for _, w := range card.Words(in.text) {
		present[w] = true
		present[nlp.Singular(w)] = true
	}
	for _, c := range n.lx.Categories() {
		for _, w := range c.Words {
			w = strings.ToLower(w)
			if present[w] || present[nlp.Singular(w)] {
				return c.Label, nil
			}
		}
	}
	return "", nil
}

func nounChunk(n *Namer, in *naming) (string, error) {
	for _, chunk := range in.doc.Chunks {
		if len(strings.Fields(chunk)) <= 3 {
			return nlp.Title(n.lx, chunk), nil
		}
	}
	return "", nil
}

func verbLemma(n *Namer, in *naming) (string, error) {
	for _, t := range in.doc.Tokens {
		if t.POS == nlp.Verb && !n.lx.IsIgnored(t.Lower()) {
			return nlp.Capitalize(t.Lemma), nil
		}
	}
	return "", nil
}
