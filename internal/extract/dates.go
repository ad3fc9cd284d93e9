package extract

import (
	"strings"
	"time"
	"unicode"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DateMatch is one date phrase found in text and the moment it resolves to.
type DateMatch struct {
	Text string
	Time time.Time
}

// DateSearcher lists every date phrase in text, in text order, resolved
// relative to now. Returned times carry no meaningful zone.
type DateSearcher interface {
	Search(text string, now time.Time) []DateMatch
}

// WhenSearcher finds English date phrases with olebedev/when.
type WhenSearcher struct {
	parser *when.Parser
}

// NewWhenSearcher returns a searcher with the English and common rule sets.
func NewWhenSearcher() *WhenSearcher {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenSearcher{parser: w}
}

// Search implements DateSearcher. The parser returns the first match only, so
// the remaining text is searched again after each hit.
func (s *WhenSearcher) Search(text string, now time.Time) []DateMatch {
	var out []DateMatch
	offset := 0
	for offset < len(text) {
		r, err := s.parser.Parse(text[offset:], now)
		if err != nil || r == nil {
			break
		}
		out = append(out, DateMatch{Text: r.Text, Time: naive(r.Time)})
		next := r.Index + len(r.Text)
		if next <= 0 {
			break
		}
		offset += next
	}
	return out
}

// naive drops the zone, keeping the wall clock reading.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// FindDate returns the first acceptable date phrase and its resolved time.
// A candidate is acceptable if it is longer than two characters or contains a
// digit. When nothing is accepted the search is retried with " on " and " at "
// removed.
func (e *Extractor) FindDate(text string, now time.Time) (*string, *time.Time) {
	if m, ok := firstAccepted(e.dates.Search(text, now)); ok {
		return &m.Text, &m.Time
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(text, " on ", " "), " at ", " ")
	if cleaned == text {
		return nil, nil
	}
	if m, ok := firstAccepted(e.dates.Search(cleaned, now)); ok {
		return &m.Text, &m.Time
	}
	return nil, nil
}

func firstAccepted(matches []DateMatch) (DateMatch, bool) {
	for _, m := range matches {
		phrase := strings.TrimSpace(m.Text)
		if len([]rune(phrase)) > 2 || strings.IndexFunc(phrase, unicode.IsDigit) >= 0 {
			m.Text = phrase
			return m, true
		}
	}
	return DateMatch{}, false
}
