package envelope

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/config"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/contextmodel"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/db"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/embed"
)

// refusingCreator fails the test if routing tries to create an envelope.
type refusingCreator struct{ t *testing.T }

func (c refusingCreator) AddEnvelope(context.Context, string, *string) (*card.Envelope, error) {
	c.t.Fatal("unexpected envelope creation")
	return nil, nil
}

func newTestRouter() *Router {
	return NewRouter(newTestNamer(), embed.NewHashEmbedder(0), config.DefaultConfig().Routing, nil)
}

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewStore(database)
}

func strPtr(s string) *string { return &s }

func TestRoute_KeywordStage(t *testing.T) {
	r := newTestRouter()
	envs := []card.Envelope{
		{ID: "a", Name: "Family", CreatedAt: 1},
		{ID: "b", Name: "Q3 Budget", CreatedAt: 2},
	}

	d, err := r.Route(context.Background(), refusingCreator{t}, Input{
		Keywords:  []string{"sarah", "budget"},
		Text:      "Call Sarah about the budget",
		Envelopes: envs,
		Context:   contextmodel.NewSnapshot(),
	})
	require.NoError(t, err)
	require.Equal(t, "b", d.EnvelopeID)
	require.Equal(t, StageKeyword, d.Stage)
	require.False(t, d.Created)
}

func TestRoute_KeywordBeatsHigherSimilarity(t *testing.T) {
	ctx := context.Background()
	r := newTestRouter()
	garden := card.Envelope{ID: "garden", Name: "Garden", CreatedAt: 1}
	party := card.Envelope{ID: "party", Name: "Neighbours", Description: strPtr("Plan the party for the neighbours"), CreatedAt: 2}
	text := "Plan the party for the neighbours in the garden"

	gardenSim, err := embed.Similarity(ctx, r.embedder, strings.ToLower(text), strings.ToLower(envelopeText(garden)))
	require.NoError(t, err)
	partySim, err := embed.Similarity(ctx, r.embedder, strings.ToLower(text), strings.ToLower(envelopeText(party)))
	require.NoError(t, err)
	require.Greater(t, partySim, gardenSim)
	require.Greater(t, partySim, config.DefaultConfig().Routing.AcceptScore)

	d, err := r.Route(ctx, refusingCreator{t}, Input{
		Keywords:  []string{"garden"},
		Text:      text,
		Envelopes: []card.Envelope{garden, party},
		Context:   contextmodel.NewSnapshot(),
	})
	require.NoError(t, err)
	require.Equal(t, "garden", d.EnvelopeID)
	require.Equal(t, StageKeyword, d.Stage)
}

func TestRoute_KeywordPrefersNewestEnvelope(t *testing.T) {
	r := newTestRouter()
	envs := []card.Envelope{
		{ID: "old", Name: "Budget Review", CreatedAt: 1},
		{ID: "new", Name: "Budget Forecast", CreatedAt: 5},
	}

	d, err := r.Route(context.Background(), refusingCreator{t}, Input{
		Keywords:  []string{"budget"},
		Text:      "budget",
		Envelopes: envs,
		Context:   contextmodel.NewSnapshot(),
	})
	require.NoError(t, err)
	require.Equal(t, "new", d.EnvelopeID)

	// input order is left untouched
	require.Equal(t, "old", envs[0].ID)
}

func TestRoute_ThematicStage(t *testing.T) {
	r := newTestRouter()
	envs := []card.Envelope{{ID: "fam", Name: "family", CreatedAt: 1}}

	d, err := r.Route(context.Background(), refusingCreator{t}, Input{
		Keywords:  []string{"kids"},
		Text:      "Pick up the kids",
		Envelopes: envs,
		Context:   contextmodel.NewSnapshot(),
	})
	require.NoError(t, err)
	require.Equal(t, "fam", d.EnvelopeID)
	require.Equal(t, StageThematic, d.Stage)
}

func TestRoute_SimilarityStageWithContextBoost(t *testing.T) {
	r := newTestRouter()
	envs := []card.Envelope{
		{ID: "home", Name: "Home Stuff", Description: strPtr("landlord lease paperwork"), CreatedAt: 1},
	}
	snap := contextmodel.NewSnapshot()
	snap.Projects["Home Stuff"] = 10

	d, err := r.Route(context.Background(), refusingCreator{t}, Input{
		Keywords:  []string{"lease"},
		Text:      "sign the lease",
		Envelopes: envs,
		Context:   snap,
	})
	require.NoError(t, err)
	require.Equal(t, "home", d.EnvelopeID)
	require.Equal(t, StageSimilarity, d.Stage)
	require.GreaterOrEqual(t, d.Score, 0.6)
}

func TestRoute_CreatesWhenNothingMatches(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	r := newTestRouter()

	existing, err := store.AddEnvelope(ctx, "Home Stuff", strPtr("landlord lease paperwork"))
	require.NoError(t, err)

	d, err := r.Route(ctx, store, Input{
		Keywords:  []string{"lease"},
		Text:      "sign the lease",
		Envelopes: []card.Envelope{*existing},
		Context:   contextmodel.NewSnapshot(),
	})
	require.NoError(t, err)
	require.True(t, d.Created)
	require.Equal(t, StageCreated, d.Stage)
	require.Equal(t, "Lease", d.EnvelopeName)
	require.NotEqual(t, existing.ID, d.EnvelopeID)

	got, err := store.GetEnvelope(ctx, d.EnvelopeID)
	require.NoError(t, err)
	require.Equal(t, "Lease", got.Name)
}

func TestRoute_FirstNoteCreatesNamedEnvelope(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	r := newTestRouter()

	d, err := r.Route(ctx, store, Input{
		Keywords: []string{"report", "q3", "budget"},
		Text:     "Remind me to submit the report for Q3 budget",
		Context:  contextmodel.NewSnapshot(),
	})
	require.NoError(t, err)
	require.True(t, d.Created)
	require.Equal(t, "Q3 Budget", d.EnvelopeName)

	envs, err := store.ListEnvelopes(ctx)
	require.NoError(t, err)
	require.Len(t, envs, 1)
}

func TestRoute_Deterministic(t *testing.T) {
	r := newTestRouter()
	snap := contextmodel.NewSnapshot()
	snap.Projects["Sales"] = 3
	snap.Themes["forecast"] = 2
	in := Input{
		Keywords: []string{"forecast", "numbers"},
		Text:     "Send the forecast numbers to Priya",
		Envelopes: []card.Envelope{
			{ID: "1", Name: "Sales", CreatedAt: 1},
			{ID: "2", Name: "Brand Design", CreatedAt: 2},
			{ID: "3", Name: "Family", CreatedAt: 3},
		},
		Context: snap,
	}

	first, err := r.Route(context.Background(), refusingCreator{t}, in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := r.Route(context.Background(), refusingCreator{t}, in)
		require.NoError(t, err)
		require.Equal(t, first, got)
	}
}
