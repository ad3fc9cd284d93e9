// Package lexicon holds the fixed vocabularies used for extraction,
// classification and naming. The defaults are embedded; a YAML file with the
// same shape may replace them.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxFileSize bounds vocabulary override files.
const MaxFileSize = 1024 * 1024

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Category maps a keyword set to an envelope label.
type Category struct {
	Label string   `yaml:"label"`
	Words []string `yaml:"words"`
}

// Grammar lists closed-class and common words for the rule-based tagger.
type Grammar struct {
	Determiners    []string `yaml:"determiners"`
	Pronouns       []string `yaml:"pronouns"`
	Prepositions   []string `yaml:"prepositions"`
	Conjunctions   []string `yaml:"conjunctions"`
	Auxiliaries    []string `yaml:"auxiliaries"`
	Particles      []string `yaml:"particles"`
	Adverbs        []string `yaml:"adverbs"`
	Adjectives     []string `yaml:"adjectives"`
	Verbs          []string `yaml:"verbs"`
	AmbiguousNouns []string `yaml:"ambiguous_nouns"`
}

// Vocabulary is the YAML document shape.
type Vocabulary struct {
	Stopwords     []string   `yaml:"stopwords"`
	IgnoreWords   []string   `yaml:"ignore_words"`
	Topics        []string   `yaml:"topics"`
	Modifiers     []string   `yaml:"modifiers"`
	Categories    []Category `yaml:"categories"`
	ReminderWords []string   `yaml:"reminder_words"`
	TaskWords     []string   `yaml:"task_words"`
	ActionVerbs   []string   `yaml:"action_verbs"`
	Pronouns      []string   `yaml:"pronouns"`
	Teams         []string   `yaml:"teams"`
	Acronyms      []string   `yaml:"acronyms"`
	Weekdays      []string   `yaml:"weekdays"`
	OrgSuffixes   []string   `yaml:"org_suffixes"`
	EventSuffixes []string   `yaml:"event_suffixes"`
	Grammar       Grammar    `yaml:"grammar"`
}

type set map[string]struct{}

func newSet(words []string) set {
	s := make(set, len(words))
	for _, w := range words {
		s[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return s
}

func (s set) has(w string) bool {
	_, ok := s[strings.ToLower(w)]
	return ok
}

// Lexicon is a Vocabulary indexed for case-insensitive lookup.
// It is immutable after construction and safe for concurrent use.
type Lexicon struct {
	vocab Vocabulary

	stop           set
	ignore         set
	topics         set
	pronouns       set
	teams          set
	weekdays       set
	orgSuffixes    set
	eventSuffixes  set
	determiners    set
	gPronouns      set
	prepositions   set
	conjunctions   set
	auxiliaries    set
	particles      set
	adverbs        set
	adjectives     set
	verbs          set
	ambiguousNouns set

	modifiers map[string]string
	acronyms  map[string]string
}

// Default returns the embedded vocabulary.
func Default() *Lexicon {
	lx, err := Parse(defaultVocabularyYAML)
	if err != nil {
		panic(fmt.Sprintf("lexicon: embedded vocabulary: %v", err))
	}
	return lx
}

// Load reads a vocabulary file. An empty path returns Default().
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat vocabulary: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("vocabulary file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return Parse(data)
}

// Parse decodes and indexes a YAML vocabulary.
func Parse(data []byte) (*Lexicon, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if len(v.Topics) == 0 || len(v.ReminderWords) == 0 || len(v.TaskWords) == 0 {
		return nil, fmt.Errorf("parse vocabulary: topics, reminder_words and task_words are required")
	}
	return New(v), nil
}

// New indexes v.
func New(v Vocabulary) *Lexicon {
	lx := &Lexicon{
		vocab:          v,
		stop:           newSet(v.Stopwords),
		ignore:         newSet(v.IgnoreWords),
		topics:         newSet(v.Topics),
		pronouns:       newSet(v.Pronouns),
		teams:          newSet(v.Teams),
		weekdays:       newSet(v.Weekdays),
		orgSuffixes:    newSet(v.OrgSuffixes),
		eventSuffixes:  newSet(v.EventSuffixes),
		determiners:    newSet(v.Grammar.Determiners),
		gPronouns:      newSet(v.Grammar.Pronouns),
		prepositions:   newSet(v.Grammar.Prepositions),
		conjunctions:   newSet(v.Grammar.Conjunctions),
		auxiliaries:    newSet(v.Grammar.Auxiliaries),
		particles:      newSet(v.Grammar.Particles),
		adverbs:        newSet(v.Grammar.Adverbs),
		adjectives:     newSet(v.Grammar.Adjectives),
		verbs:          newSet(v.Grammar.Verbs),
		ambiguousNouns: newSet(v.Grammar.AmbiguousNouns),
		modifiers:      make(map[string]string, len(v.Modifiers)),
		acronyms:       make(map[string]string, len(v.Acronyms)),
	}
	for _, m := range v.Modifiers {
		lx.modifiers[strings.ToLower(m)] = m
	}
	for _, a := range v.Acronyms {
		lx.acronyms[strings.ToLower(a)] = a
	}
	return lx
}

// Vocabulary returns the underlying tables.
func (lx *Lexicon) Vocabulary() Vocabulary { return lx.vocab }

func (lx *Lexicon) IsStop(w string) bool    { return lx.stop.has(w) }
func (lx *Lexicon) IsIgnored(w string) bool { return lx.ignore.has(w) }
func (lx *Lexicon) IsTopic(w string) bool   { return lx.topics.has(w) }
func (lx *Lexicon) IsPronoun(w string) bool { return lx.pronouns.has(w) }
func (lx *Lexicon) IsTeam(w string) bool    { return lx.teams.has(w) }
func (lx *Lexicon) IsWeekday(w string) bool { return lx.weekdays.has(w) }

// Topics returns the topic words in table order.
func (lx *Lexicon) Topics() []string { return lx.vocab.Topics }

// Teams returns the team vocabulary.
func (lx *Lexicon) Teams() []string { return lx.vocab.Teams }

// Categories returns the category table in priority order.
func (lx *Lexicon) Categories() []Category { return lx.vocab.Categories }

// ReminderWords returns the reminder family in priority order.
func (lx *Lexicon) ReminderWords() []string { return lx.vocab.ReminderWords }

// TaskWords returns the task family in priority order.
func (lx *Lexicon) TaskWords() []string { return lx.vocab.TaskWords }

// ActionVerbs returns the verbs that trigger add_date suggestions.
func (lx *Lexicon) ActionVerbs() []string { return lx.vocab.ActionVerbs }

// Modifier reports whether w is a modifier token and returns its canonical
// spelling. Years 1900-2099 are modifiers.
func (lx *Lexicon) Modifier(w string) (string, bool) {
	if m, ok := lx.modifiers[strings.ToLower(w)]; ok {
		return m, true
	}
	if len(w) == 4 {
		if y, err := strconv.Atoi(w); err == nil && y >= 1900 && y <= 2099 {
			return w, true
		}
	}
	return "", false
}

// Acronym returns the canonical casing of w if it is a known acronym.
func (lx *Lexicon) Acronym(w string) (string, bool) {
	a, ok := lx.acronyms[strings.ToLower(w)]
	return a, ok
}

// IsCalendarWord reports whether w names a weekday, relative day or modifier.
func (lx *Lexicon) IsCalendarWord(w string) bool {
	if lx.IsWeekday(w) {
		return true
	}
	_, ok := lx.Modifier(w)
	return ok
}

func (lx *Lexicon) IsOrgSuffix(w string) bool   { return lx.orgSuffixes.has(w) }
func (lx *Lexicon) IsEventSuffix(w string) bool { return lx.eventSuffixes.has(w) }

func (lx *Lexicon) IsDeterminer(w string) bool  { return lx.determiners.has(w) }
func (lx *Lexicon) IsPronounWord(w string) bool { return lx.gPronouns.has(w) }
func (lx *Lexicon) IsPreposition(w string) bool { return lx.prepositions.has(w) }
func (lx *Lexicon) IsConjunction(w string) bool { return lx.conjunctions.has(w) }
func (lx *Lexicon) IsAuxiliary(w string) bool   { return lx.auxiliaries.has(w) }
func (lx *Lexicon) IsParticle(w string) bool    { return lx.particles.has(w) }
func (lx *Lexicon) IsAdverb(w string) bool      { return lx.adverbs.has(w) }
func (lx *Lexicon) IsAdjective(w string) bool   { return lx.adjectives.has(w) }
func (lx *Lexicon) IsVerb(w string) bool        { return lx.verbs.has(w) }

// IsAmbiguousNoun reports whether a listed verb also reads as a noun.
func (lx *Lexicon) IsAmbiguousNoun(w string) bool { return lx.ambiguousNouns.has(w) }

// IsKnown reports whether w appears in any closed-class or vocabulary table.
// Unknown capitalized words are treated as names by the rule tagger.
func (lx *Lexicon) IsKnown(w string) bool {
	return lx.stop.has(w) || lx.ignore.has(w) || lx.topics.has(w) ||
		lx.determiners.has(w) || lx.gPronouns.has(w) || lx.prepositions.has(w) ||
		lx.conjunctions.has(w) || lx.auxiliaries.has(w) || lx.particles.has(w) ||
		lx.adverbs.has(w) || lx.adjectives.has(w) || lx.verbs.has(w) ||
		lx.weekdays.has(w) || lx.IsCalendarWord(w)
}
