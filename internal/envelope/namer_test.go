package envelope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/embed"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/nlp"
)

func newTestNamer() *Namer {
	lx := lexicon.Default()
	return NewNamer(nlp.NewRuleAnalyzer(lx), lx, embed.NewHashEmbedder(0), 0.75)
}

func TestNamer_Name(t *testing.T) {
	n := newTestNamer()
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"topic with modifier", "Remind me to submit the report for Q3 budget", "Q3 Budget"},
		{"topic only", "Prepare the marketing plan", "Plan"},
		{"year modifier", "Draft the 2025 budget", "2025 Budget"},
		{"category whole word", "Pick up the kids", "Family"},
		{"category plural", "buy groceries", "Groceries"},
		{"noun chunk", "call about apartment lease renewal", "Apartment Lease Renewal"},
		{"verb lemma", "Just going", "Go"},
		{"fallback", "!!!", DefaultGeneralName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Name(ctx, tt.text, nil)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNamer_ReusesCloseExistingName(t *testing.T) {
	n := newTestNamer()

	got, err := n.Name(context.Background(), "q3 budget", []string{"Brand Design", "Q3 Budget"})
	require.NoError(t, err)
	require.Equal(t, "Q3 Budget", got)
}

func TestNamer_IgnoresDistantExistingName(t *testing.T) {
	n := newTestNamer()

	got, err := n.Name(context.Background(), "Pick up the kids", []string{"Q3 Budget"})
	require.NoError(t, err)
	require.Equal(t, "Family", got)
}

func TestNamer_Suggest(t *testing.T) {
	n := newTestNamer()
	ctx := context.Background()

	s, err := n.Suggest(ctx, "q3 budget", []string{"Family", "Q3 Budget"})
	require.NoError(t, err)
	require.Equal(t, "Q3 Budget", s.Name)
	require.True(t, s.Reuse)
	require.InDelta(t, 1.0, s.Score, 1e-6)

	s, err = n.Suggest(ctx, "anything", nil)
	require.NoError(t, err)
	require.Empty(t, s.Name)
	require.False(t, s.Reuse)
}

func TestSequenceRatio(t *testing.T) {
	require.InDelta(t, 1.0, SequenceRatio("Q3 Budget", "q3 budget"), 1e-9)
	require.InDelta(t, 0.0, SequenceRatio("abc", "xyz"), 1e-9)
	r := SequenceRatio("budget", "budgets")
	require.Greater(t, r, 0.9)
	require.Less(t, r, 1.0)
}

func TestNamer_Deterministic(t *testing.T) {
	n := newTestNamer()
	ctx := context.Background()
	text := "Email the design team about the new logo"

	first, err := n.Name(ctx, text, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := n.Name(ctx, text, nil)
		require.NoError(t, err)
		require.Equal(t, first, got)
	}
}

func TestCategory_MatchesWholeWords(t *testing.T) {
	n := newTestNamer()

	tests := []struct {
		text string
		want string
	}{
		{"email the landlord", ""}, // "ai" inside "email"
		{"maintain the boiler", ""},
		{"read the ai paper", "AI Research"},
		{"buy fruits", "Groceries"},
	}
	for _, tt := range tests {
		got, err := category(n, &naming{text: tt.text})
		require.NoError(t, err)
		if got != tt.want {
			t.Errorf("category(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
