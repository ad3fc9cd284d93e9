// Package extract pulls assignee, date and context keywords out of a note and
// classifies it as a task, reminder or idea.
package extract

import (
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/nlp"
)

// Result holds the structured fields found in one note.
type Result struct {
	Assignee   *string
	DateText   *string
	DateParsed *time.Time
	Keywords   []string
	Entities   []nlp.Entity

	// Degraded lists the fields that came back empty. It is informational.
	Degraded []string
}

// Extractor extracts fields from note text. It is safe for concurrent use if
// its Analyzer and DateSearcher are.
type Extractor struct {
	analyzer nlp.Analyzer
	lx       *lexicon.Lexicon
	dates    DateSearcher
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDateSearcher replaces the default date searcher.
func WithDateSearcher(d DateSearcher) Option {
	return func(e *Extractor) { e.dates = d }
}

// WithLogger sets the logger used for degradation notices.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New returns an Extractor.
func New(analyzer nlp.Analyzer, lx *lexicon.Lexicon, opts ...Option) *Extractor {
	e := &Extractor{analyzer: analyzer, lx: lx, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.dates == nil {
		e.dates = NewWhenSearcher()
	}
	return e
}

// Lexicon returns the vocabulary the extractor was built with.
func (e *Extractor) Lexicon() *lexicon.Lexicon { return e.lx }

// Extract analyzes text relative to now. Identical inputs give identical results.
func (e *Extractor) Extract(text string, now time.Time) (Result, error) {
	doc, err := e.analyzer.Analyze(text)
	if err != nil {
		return Result{}, err
	}

	var res Result
	res.Entities = doc.Entities
	res.Assignee = e.assignee(doc)
	res.DateText, res.DateParsed = e.FindDate(text, now)

	res.Keywords, err = e.keywords(doc)
	if err != nil {
		return Result{}, err
	}

	if res.Assignee == nil {
		res.Degraded = append(res.Degraded, "assignee")
	}
	if res.DateParsed == nil {
		res.Degraded = append(res.Degraded, "date")
	}
	if len(res.Keywords) == 0 {
		res.Degraded = append(res.Degraded, "keywords")
	}
	if len(res.Degraded) > 0 {
		e.logger.Debug("extraction degraded", "missing", res.Degraded)
	}
	return res, nil
}

// Classify returns the note type using the extractor's vocabulary.
func (e *Extractor) Classify(text string) card.Type {
	return Classify(e.lx, text)
}

// keywords keeps the nouns and proper nouns of the note with filler removed.
func (e *Extractor) keywords(doc nlp.Doc) ([]string, error) {
	kept := make([]string, 0, len(doc.Tokens))
	for _, t := range doc.Tokens {
		if !e.lx.IsStop(t.Lower()) {
			kept = append(kept, t.Text)
		}
	}
	clean := strings.Join(kept, " ")

	cleanDoc, err := e.analyzer.Analyze(clean)
	if err != nil {
		return nil, err
	}

	var out []string
	seen := make(map[string]bool)
	for _, t := range cleanDoc.Tokens {
		if t.POS != nlp.Noun && t.POS != nlp.Propn {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(t.Text))
		if k == "" || e.lx.IsStop(k) || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	if len(out) > 0 {
		return out, nil
	}

	fields := strings.Fields(clean)
	if len(fields) > 6 {
		fields = fields[:6]
	}
	for _, w := range fields {
		k := strings.ToLower(w)
		if !hasWordRune(k) || e.lx.IsStop(k) || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out, nil
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
