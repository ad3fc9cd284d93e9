package analyze

import (
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
)

func ref(c card.Card) CardRef {
	return CardRef{ID: c.ID, EnvelopeID: c.EnvelopeID, Description: c.Description}
}

// groups collects cards under string keys, remembering first-seen key order.
type groups struct {
	order []string
	byKey map[string][]card.Card
}

func newGroups() *groups {
	return &groups{byKey: make(map[string][]card.Card)}
}

func (g *groups) add(key string, c card.Card) {
	if _, ok := g.byKey[key]; !ok {
		g.order = append(g.order, key)
	}
	g.byKey[key] = append(g.byKey[key], c)
}

// findDuplicates groups cards by normalized description. Cards with an empty
// description are skipped.
func findDuplicates(cards []card.Card) []Duplicate {
	g := newGroups()
	for _, c := range cards {
		key := card.Normalize(c.Description)
		if key == "" {
			continue
		}
		g.add(key, c)
	}

	var out []Duplicate
	for _, key := range g.order {
		members := g.byKey[key]
		if len(members) < 2 {
			continue
		}
		d := Duplicate{Description: key}
		for _, c := range members {
			d.Cards = append(d.Cards, ref(c))
		}
		out = append(out, d)
	}
	return out
}

// findConflicts groups dated cards by assignee, then by calendar day.
func findConflicts(cards []card.Card) []Conflict {
	byAssignee := newGroups()
	for _, c := range cards {
		if c.Assignee == nil || strings.TrimSpace(*c.Assignee) == "" || c.DateParsed == nil {
			continue
		}
		byAssignee.add(*c.Assignee, c)
	}

	var out []Conflict
	for _, assignee := range byAssignee.order {
		byDay := newGroups()
		for _, c := range byAssignee.byKey[assignee] {
			byDay.add(c.DateParsed.Format("2006-01-02"), c)
		}
		for _, day := range byDay.order {
			members := byDay.byKey[day]
			if len(members) < 2 {
				continue
			}
			conflict := Conflict{Assignee: assignee, Date: day}
			for _, c := range members {
				conflict.Cards = append(conflict.Cards, CardRef{ID: c.ID, Description: c.Description})
			}
			out = append(out, conflict)
		}
	}
	return out
}
