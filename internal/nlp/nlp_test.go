package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
)

func posOf(doc Doc) []string {
	out := make([]string, len(doc.Tokens))
	for i, t := range doc.Tokens {
		out[i] = t.POS
	}
	return out
}

func TestRuleAnalyzer_Tags(t *testing.T) {
	a := NewRuleAnalyzer(lexicon.Default())

	doc, err := a.Analyze("Call Sarah about the Q3 budget next Monday")
	require.NoError(t, err)
	require.Equal(t,
		[]string{Verb, Propn, Adp, Det, Propn, Noun, Adj, Propn},
		posOf(doc))

	doc, err = a.Analyze("Submit the report")
	require.NoError(t, err)
	require.Equal(t, []string{Verb, Det, Noun}, posOf(doc))
}

func TestRuleAnalyzer_Entities(t *testing.T) {
	a := NewRuleAnalyzer(lexicon.Default())

	tests := []struct {
		name string
		text string
		want []Entity
	}{
		{
			name: "person after verb",
			text: "Call Sarah about the Q3 budget next Monday",
			want: []Entity{{Text: "Sarah", Label: LabelPerson}},
		},
		{
			name: "multi-word person",
			text: "Ask John Smith for the forecast",
			want: []Entity{{Text: "John Smith", Label: LabelPerson}},
		},
		{
			name: "event by suffix",
			text: "Brand Design Summit planning",
			want: []Entity{{Text: "Brand Design Summit", Label: LabelEvent}},
		},
		{
			name: "organization by suffix",
			text: "Email Acme Labs and Priya",
			want: []Entity{
				{Text: "Acme Labs", Label: LabelOrg},
				{Text: "Priya", Label: LabelPerson},
			},
		},
		{
			name: "no entities",
			text: "Remind me to submit the report for Q3 budget",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := a.Analyze(tt.text)
			require.NoError(t, err)
			if tt.want == nil {
				require.Empty(t, doc.Entities)
				return
			}
			require.Equal(t, tt.want, doc.Entities)
		})
	}
}

func TestRuleAnalyzer_Chunks(t *testing.T) {
	a := NewRuleAnalyzer(lexicon.Default())

	doc, err := a.Analyze("Call Sarah about the Q3 budget next Monday")
	require.NoError(t, err)
	require.Equal(t, []string{"Sarah", "Q3 budget", "next Monday"}, doc.Chunks)
}

func TestRuleAnalyzer_Lemmas(t *testing.T) {
	a := NewRuleAnalyzer(lexicon.Default())

	doc, err := a.Analyze("Planning launches")
	require.NoError(t, err)
	require.Equal(t, Verb, doc.Tokens[0].POS)
	require.Equal(t, "plan", doc.Tokens[0].Lemma)
}

func TestRuleAnalyzer_Deterministic(t *testing.T) {
	a := NewRuleAnalyzer(lexicon.Default())
	text := "Follow up with the marketing team about Acme Labs on Friday"

	first, err := a.Analyze(text)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := a.Analyze(text)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestEntitiesWithLabel(t *testing.T) {
	doc := Doc{Entities: []Entity{
		{Text: "Acme Labs", Label: LabelOrg},
		{Text: "Sarah", Label: LabelPerson},
		{Text: "Summit", Label: LabelEvent},
	}}
	require.Equal(t, []Entity{{Text: "Sarah", Label: LabelPerson}}, doc.EntitiesWithLabel(LabelPerson))
	require.Len(t, doc.EntitiesWithLabel(LabelOrg, LabelEvent), 2)
}

func TestProseAnalyzer_Structure(t *testing.T) {
	a := NewProseAnalyzer(lexicon.Default())

	doc, err := a.Analyze("Call Sarah about the Q3 budget next Monday")
	require.NoError(t, err)
	require.NotEmpty(t, doc.Tokens)
	for _, tok := range doc.Tokens {
		require.NotEmpty(t, tok.Text)
		require.NotEmpty(t, tok.POS)
	}
	for _, e := range doc.Entities {
		require.NotEmpty(t, e.Label)
		require.Contains(t, doc.Text, e.Text)
	}
}

func TestProseAnalyzer_ReusesModel(t *testing.T) {
	a := NewProseAnalyzer(lexicon.Default())
	require.NotNil(t, a.model)
	model := a.model

	// Loading the model takes hundreds of milliseconds; tagging a short
	// note with a loaded model takes about one.
	start := time.Now()
	for i := 0; i < 20; i++ {
		_, err := a.Analyze("Remind me to submit the report for Q3 budget")
		require.NoError(t, err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("20 Analyze calls took %s, want the model loaded once", elapsed)
	}
	require.Same(t, model, a.model)
}

func TestNew(t *testing.T) {
	lx := lexicon.Default()

	a, err := New("", lx)
	require.NoError(t, err)
	require.IsType(t, &ProseAnalyzer{}, a)

	a, err = New(BackendRules, lx)
	require.NoError(t, err)
	require.IsType(t, &RuleAnalyzer{}, a)

	_, err = New("spacy", lx)
	require.Error(t, err)
}

func TestCoarse(t *testing.T) {
	tests := map[string]string{
		"NN": Noun, "NNS": Noun, "NNP": Propn, "VBD": Verb, "MD": Aux,
		"JJR": Adj, "RB": Adv, "PRP$": Pron, "DT": Det, "IN": Adp,
		"CD": Num, "CC": Cconj, "TO": Part, ".": Punct, ",": Punct, "UH": Other,
	}
	for tag, want := range tests {
		require.Equal(t, want, coarse(tag), tag)
	}
}

func TestTitle(t *testing.T) {
	lx := lexicon.Default()
	require.Equal(t, "Q3 Budget", Title(lx, "q3 budget"))
	require.Equal(t, "AI Research Plan", Title(lx, "ai research plan"))
	require.Equal(t, "Marketing Team", Title(lx, "marketing  team"))
	require.Equal(t, "Plan", Capitalize("pLAN"))
	require.Equal(t, "", Capitalize(""))
}

func TestSingular(t *testing.T) {
	tests := map[string]string{
		"fruits":     "fruit",
		"kids":       "kid",
		"stories":    "story",
		"boxes":      "box",
		"class":      "class",
		"status":     "status",
		"vegetables": "vegetable",
	}
	for in, want := range tests {
		require.Equal(t, want, Singular(in), in)
	}
}

func TestVerbLemma(t *testing.T) {
	lx := lexicon.Default()
	tests := map[string]string{
		"planned":   "plan",
		"planning":  "plan",
		"finishes":  "finish",
		"scheduled": "schedule",
		"studies":   "study",
		"calls":     "call",
	}
	for in, want := range tests {
		got, ok := verbLemma(lx, in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
}
