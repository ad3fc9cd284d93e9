package nlp

import "strings"

// nounChunks returns base noun phrases: runs of adjectives, numbers and
// nouns ending in a noun. Determiners and pronouns are left out.
func nounChunks(tokens []Token) []string {
	var chunks []string
	var cur []string
	lastNominal := 0

	flush := func() {
		if lastNominal > 0 {
			chunks = append(chunks, strings.Join(cur[:lastNominal], " "))
		}
		cur = cur[:0]
		lastNominal = 0
	}

	for _, t := range tokens {
		switch t.POS {
		case Noun, Propn:
			cur = append(cur, t.Text)
			lastNominal = len(cur)
		case Adj, Num:
			if lastNominal > 0 && lastNominal == len(cur) && t.POS == Adj {
				// "report final" is not a chunk continuation
				flush()
			}
			cur = append(cur, t.Text)
		default:
			flush()
		}
	}
	flush()
	return chunks
}
