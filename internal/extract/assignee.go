package extract

import (
	"sort"
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/nlp"
)

// assignee resolves who a note is for. The first path that yields a name
// wins: a person entity, then a team mention, then a first-person pronoun.
func (e *Extractor) assignee(doc nlp.Doc) *string {
	if name, ok := e.personAssignee(doc); ok {
		return &name
	}
	if team, ok := e.teamAssignee(doc.Text); ok {
		return &team
	}
	for _, t := range doc.Tokens {
		if e.lx.IsPronoun(t.Lower()) {
			me := "Me"
			return &me
		}
	}
	return nil
}

// personAssignee takes the first usable PERSON entity. A leading filler word
// ("Call Sarah") is dropped; an entity left empty, or made only of calendar
// words ("Monday", "Q3"), is passed over.
func (e *Extractor) personAssignee(doc nlp.Doc) (string, bool) {
	for _, ent := range doc.EntitiesWithLabel(nlp.LabelPerson) {
		words := strings.Fields(ent.Text)
		if len(words) > 0 && e.lx.IsStop(words[0]) {
			words = words[1:]
		}
		if len(words) == 0 || e.allCalendar(words) {
			continue
		}
		return strings.Join(words, " "), true
	}
	return "", false
}

func (e *Extractor) allCalendar(words []string) bool {
	for _, w := range words {
		if !e.lx.IsCalendarWord(w) {
			return false
		}
	}
	return true
}

// teamAssignee collects team mentions from the team vocabulary and the
// "<word> team" / "team <word>" patterns, and returns the longest one
// (lexically smallest on ties), title-cased.
func (e *Extractor) teamAssignee(text string) (string, bool) {
	words := card.Words(text)
	var found []string

	for _, phrase := range e.lx.Teams() {
		if containsPhrase(words, strings.Fields(strings.ToLower(phrase))) {
			found = append(found, strings.ToLower(phrase))
		}
	}

	for i, w := range words {
		if w != "team" {
			continue
		}
		if i > 0 && e.teamWord(words[i-1]) {
			found = append(found, words[i-1]+" team")
		}
		if i+1 < len(words) && e.teamWord(words[i+1]) {
			found = append(found, "team "+words[i+1])
		}
	}

	if len(found) == 0 {
		return "", false
	}
	sort.Slice(found, func(i, j int) bool {
		if len(found[i]) != len(found[j]) {
			return len(found[i]) > len(found[j])
		}
		return found[i] < found[j]
	})
	return nlp.Title(e.lx, found[0]), true
}

// teamWord reports whether w can name a team next to the word "team".
func (e *Extractor) teamWord(w string) bool {
	lx := e.lx
	return w != "team" && !lx.IsStop(w) && !lx.IsDeterminer(w) && !lx.IsPronounWord(w) &&
		!lx.IsPreposition(w) && !lx.IsConjunction(w) && !lx.IsAuxiliary(w) && !lx.IsCalendarWord(w)
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
