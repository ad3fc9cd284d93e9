package extract

import (
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
)

// Classify assigns a type by substring membership on the lowercased text.
// The reminder family is checked before the task family; neither means Idea.
func Classify(lx *lexicon.Lexicon, text string) card.Type {
	lower := strings.ToLower(text)
	if containsAny(lower, lx.ReminderWords()) {
		return card.TypeReminder
	}
	if containsAny(lower, lx.TaskWords()) {
		return card.TypeTask
	}
	return card.TypeIdea
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
