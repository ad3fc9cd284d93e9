package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/nlp"
)

var testNow = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC) // a Wednesday

// fakeDates returns canned matches per exact input text.
type fakeDates map[string][]DateMatch

func (f fakeDates) Search(text string, _ time.Time) []DateMatch { return f[text] }

// entityOverride wraps an analyzer and replaces its entities.
type entityOverride struct {
	nlp.Analyzer
	entities []nlp.Entity
}

func (o entityOverride) Analyze(text string) (nlp.Doc, error) {
	doc, err := o.Analyzer.Analyze(text)
	doc.Entities = o.entities
	return doc, err
}

func newRuleExtractor(opts ...Option) *Extractor {
	lx := lexicon.Default()
	return New(nlp.NewRuleAnalyzer(lx), lx, opts...)
}

func TestExtract_PersonAndDate(t *testing.T) {
	e := newRuleExtractor()

	res, err := e.Extract("Call Sarah about the Q3 budget next Monday", testNow)
	require.NoError(t, err)

	require.NotNil(t, res.Assignee)
	require.Equal(t, "Sarah", *res.Assignee)

	require.NotNil(t, res.DateText)
	require.True(t, strings.EqualFold("next Monday", *res.DateText), "date text %q", *res.DateText)
	require.NotNil(t, res.DateParsed)
	require.Equal(t, time.Monday, res.DateParsed.Weekday())
	require.True(t, res.DateParsed.After(testNow))
	require.True(t, res.DateParsed.Before(testNow.AddDate(0, 0, 15)))

	require.Equal(t, []string{"sarah", "q3", "budget", "monday"}, res.Keywords)
	require.Empty(t, res.Degraded)
}

func TestExtract_Deterministic(t *testing.T) {
	e := newRuleExtractor()
	text := "Follow up with the marketing team about the launch on Friday"

	first, err := e.Extract(text, testNow)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := e.Extract(text, testNow)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestExtract_PronounFallback(t *testing.T) {
	e := newRuleExtractor(WithDateSearcher(fakeDates{}))

	res, err := e.Extract("Remind me to submit the report for Q3 budget", testNow)
	require.NoError(t, err)
	require.Equal(t, "Me", *res.Assignee)
	require.Equal(t, []string{"q3", "budget"}, res.Keywords)
	require.Equal(t, []string{"date"}, res.Degraded)
}

func TestExtract_PersonEntityCorrections(t *testing.T) {
	lx := lexicon.Default()
	base := nlp.NewRuleAnalyzer(lx)

	tests := []struct {
		name     string
		entities []nlp.Entity
		want     string
	}{
		{
			name:     "leading filler dropped",
			entities: []nlp.Entity{{Text: "Call Sarah", Label: nlp.LabelPerson}},
			want:     "Sarah",
		},
		{
			name: "empty after filler falls through to next person",
			entities: []nlp.Entity{
				{Text: "Remind", Label: nlp.LabelPerson},
				{Text: "Priya", Label: nlp.LabelPerson},
			},
			want: "Priya",
		},
		{
			name: "calendar-only entity skipped",
			entities: []nlp.Entity{
				{Text: "Monday", Label: nlp.LabelPerson},
				{Text: "Dev Patel", Label: nlp.LabelPerson},
			},
			want: "Dev Patel",
		},
		{
			name: "non-person entities ignored",
			entities: []nlp.Entity{
				{Text: "Acme Labs", Label: nlp.LabelOrg},
				{Text: "Tom", Label: nlp.LabelPerson},
			},
			want: "Tom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(entityOverride{Analyzer: base, entities: tt.entities}, lx, WithDateSearcher(fakeDates{}))
			res, err := e.Extract("ping them", testNow)
			require.NoError(t, err)
			require.NotNil(t, res.Assignee)
			require.Equal(t, tt.want, *res.Assignee)
		})
	}
}

func TestExtract_Team(t *testing.T) {
	e := newRuleExtractor(WithDateSearcher(fakeDates{}))

	tests := []struct {
		text string
		want string
	}{
		{"Follow up with the marketing team about the launch", "Marketing Team"},
		{"Share the deck with the design team and team alpha", "Design Team"},
		{"Sync alpha team and team omega", "Alpha Team"},
		{"Send the contract to HR", "HR"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := e.Extract(tt.text, testNow)
			require.NoError(t, err)
			require.NotNil(t, res.Assignee)
			require.Equal(t, tt.want, *res.Assignee)
		})
	}
}

func TestExtract_NoAssignee(t *testing.T) {
	e := newRuleExtractor(WithDateSearcher(fakeDates{}))

	res, err := e.Extract("Brainstorm new logo concepts", testNow)
	require.NoError(t, err)
	require.Nil(t, res.Assignee)
	require.Nil(t, res.DateText)
	require.Equal(t, []string{"logo", "concepts"}, res.Keywords)
	require.Equal(t, []string{"assignee", "date"}, res.Degraded)
}

func TestExtract_KeywordFallback(t *testing.T) {
	e := newRuleExtractor(WithDateSearcher(fakeDates{}))

	res, err := e.Extract("Finish quickly, then!", testNow)
	require.NoError(t, err)
	// no nouns survive, so the first words of the cleaned text are used
	require.Equal(t, []string{"quickly", "then"}, res.Keywords)
}

func TestFindDate_AcceptanceRule(t *testing.T) {
	t1 := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)

	e := newRuleExtractor(WithDateSearcher(fakeDates{
		"pay rent on 5": {{Text: "on", Time: t1}, {Text: " 5 ", Time: t2}},
	}))

	text, parsed := e.FindDate("pay rent on 5", testNow)
	require.NotNil(t, text)
	require.Equal(t, "5", *text)
	require.Equal(t, t2, *parsed)
}

func TestFindDate_RetryWithoutOnAt(t *testing.T) {
	sunday := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	e := newRuleExtractor(WithDateSearcher(fakeDates{
		"Meet on next Sunday":    {{Text: "on", Time: sunday}},
		"Meet next Sunday":       {{Text: "next Sunday", Time: sunday}},
		"Lunch at noon tomorrow": nil,
	}))

	text, parsed := e.FindDate("Meet on next Sunday", testNow)
	require.NotNil(t, text)
	require.Equal(t, "next Sunday", *text)
	require.Equal(t, sunday, *parsed)

	text, parsed = e.FindDate("Lunch at noon tomorrow", testNow)
	require.Nil(t, text)
	require.Nil(t, parsed)
}

func TestWhenSearcher_Naive(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, loc)

	matches := NewWhenSearcher().Search("ship it tomorrow", now)
	require.NotEmpty(t, matches)
	require.Equal(t, time.UTC, matches[0].Time.Location())
	require.Equal(t, 6, matches[0].Time.Day())
}

func TestClassify(t *testing.T) {
	lx := lexicon.Default()

	tests := []struct {
		text string
		want card.Type
	}{
		{"Remind me to submit the report", card.TypeReminder},
		{"Don't forget to call mom", card.TypeReminder},
		{"I should remember the milk", card.TypeReminder},
		{"Call Sarah about the budget", card.TypeTask},
		{"Schedule the follow-up", card.TypeTask},
		{"Pick up groceries", card.TypeTask},
		{"What if we redesign the logo", card.TypeIdea},
		{"", card.TypeIdea},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(lx, tt.text))
		})
	}
}
