// Package nlp turns note text into tagged tokens, named entities and noun
// chunks. Two backends implement Analyzer: a statistical one built on prose
// and a lexicon-driven rule tagger with fully predictable output.
package nlp

import (
	"fmt"
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
)

// Coarse part-of-speech tags.
const (
	Noun  = "NOUN"
	Propn = "PROPN"
	Verb  = "VERB"
	Adj   = "ADJ"
	Adv   = "ADV"
	Pron  = "PRON"
	Det   = "DET"
	Adp   = "ADP"
	Num   = "NUM"
	Cconj = "CCONJ"
	Part  = "PART"
	Aux   = "AUX"
	Punct = "PUNCT"
	Other = "X"
)

// Entity labels.
const (
	LabelPerson    = "PERSON"
	LabelOrg       = "ORG"
	LabelEvent     = "EVENT"
	LabelWorkOfArt = "WORK_OF_ART"
	LabelGPE       = "GPE"
)

// Token is one analyzed word or punctuation mark.
type Token struct {
	Text  string
	Tag   string // Penn Treebank tag
	POS   string // coarse tag
	Lemma string
}

// Lower returns the lowercased token text.
func (t Token) Lower() string { return strings.ToLower(t.Text) }

// Entity is a named span with a label.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Doc is the analysis of one text.
type Doc struct {
	Text     string
	Tokens   []Token
	Entities []Entity

	// Chunks are noun phrases with determiners and pronouns removed.
	Chunks []string
}

// EntitiesWithLabel returns the entities carrying any of labels, in document order.
func (d Doc) EntitiesWithLabel(labels ...string) []Entity {
	var out []Entity
	for _, e := range d.Entities {
		for _, l := range labels {
			if e.Label == l {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Analyzer analyzes text. Implementations must be deterministic and safe for
// concurrent use.
type Analyzer interface {
	Analyze(text string) (Doc, error)
}

// Backend names accepted by New.
const (
	BackendProse = "prose"
	BackendRules = "rules"
)

// New returns the analyzer for backend.
func New(backend string, lx *lexicon.Lexicon) (Analyzer, error) {
	switch backend {
	case "", BackendProse:
		return NewProseAnalyzer(lx), nil
	case BackendRules:
		return NewRuleAnalyzer(lx), nil
	}
	return nil, fmt.Errorf("unknown nlp backend %q", backend)
}

// coarse maps a Penn Treebank tag to a coarse tag.
func coarse(tag string) string {
	switch {
	case tag == "NN" || tag == "NNS":
		return Noun
	case tag == "NNP" || tag == "NNPS":
		return Propn
	case tag == "MD":
		return Aux
	case strings.HasPrefix(tag, "VB"):
		return Verb
	case strings.HasPrefix(tag, "JJ"):
		return Adj
	case strings.HasPrefix(tag, "RB") || tag == "WRB":
		return Adv
	case tag == "PRP" || tag == "PRP$" || tag == "WP" || tag == "WP$":
		return Pron
	case tag == "DT" || tag == "PDT" || tag == "WDT":
		return Det
	case tag == "IN":
		return Adp
	case tag == "CD":
		return Num
	case tag == "CC":
		return Cconj
	case tag == "TO" || tag == "RP" || tag == "POS":
		return Part
	case tag == "" || strings.ContainsAny(tag, ".,:()$#`'\"") || tag == "SYM" || tag == "HYPH":
		return Punct
	}
	return Other
}

// penn returns a representative Penn Treebank tag for a coarse tag.
func penn(pos string) string {
	switch pos {
	case Noun:
		return "NN"
	case Propn:
		return "NNP"
	case Verb:
		return "VB"
	case Adj:
		return "JJ"
	case Adv:
		return "RB"
	case Pron:
		return "PRP"
	case Det:
		return "DT"
	case Adp:
		return "IN"
	case Num:
		return "CD"
	case Cconj:
		return "CC"
	case Part:
		return "RP"
	case Aux:
		return "MD"
	case Punct:
		return "."
	}
	return "FW"
}
