package analyze

import (
	"fmt"
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
)

// suggestNextSteps looks at undated tasks. An envelope with two or more of
// them gets a scheduling suggestion; a task that mentions an action verb gets
// an add-date suggestion for the first verb found.
func suggestNextSteps(cards []card.Card, actionVerbs []string, maxSamples int) []Suggestion {
	byEnvelope := newGroups()
	var tasks []card.Card
	for _, c := range cards {
		if c.Type != card.TypeTask {
			continue
		}
		tasks = append(tasks, c)
		if c.DateParsed == nil {
			byEnvelope.add(c.EnvelopeID, c)
		}
	}

	var out []Suggestion
	for _, envID := range byEnvelope.order {
		undated := byEnvelope.byKey[envID]
		if len(undated) < 2 {
			continue
		}
		s := Suggestion{
			Type:       SuggestSchedule,
			EnvelopeID: envID,
			Reason:     fmt.Sprintf("%d tasks in envelope have no dates; consider scheduling or prioritizing", len(undated)),
		}
		for i, c := range undated {
			if maxSamples > 0 && i >= maxSamples {
				break
			}
			s.SampleTasks = append(s.SampleTasks, CardRef{ID: c.ID, Description: c.Description})
		}
		out = append(out, s)
	}

	for _, t := range tasks {
		if t.DateParsed != nil {
			continue
		}
		desc := strings.ToLower(t.Description)
		for _, verb := range actionVerbs {
			if strings.Contains(desc, strings.ToLower(verb)) {
				out = append(out, Suggestion{
					Type:   SuggestAddDate,
					CardID: t.ID,
					Reason: fmt.Sprintf("Task mentions '%s' but has no date. Consider scheduling.", verb),
				})
				break
			}
		}
	}
	return out
}
