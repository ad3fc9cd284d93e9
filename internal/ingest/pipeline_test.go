package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/config"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/contextmodel"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/db"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/embed"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/envelope"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/extract"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/metrics"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/nlp"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/override"
)

var testNow = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC) // a Monday

type fakeOverride struct {
	fields *override.Fields
	err    error
	calls  int
}

func (f *fakeOverride) Extract(context.Context, string) (*override.Fields, error) {
	f.calls++
	return f.fields, f.err
}

func strPtr(s string) *string { return &s }

type failingEmbedder struct{ err error }

func (f failingEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, f.err }
func (f failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, f.err
}
func (f failingEmbedder) Dimensions() int { return 0 }

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *db.Store, *contextmodel.Model) {
	t.Helper()
	ctx := context.Background()

	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	store := db.NewStore(database)

	lx := lexicon.Default()
	analyzer := nlp.NewRuleAnalyzer(lx)
	embedder := embed.NewHashEmbedder(0)
	routing := config.DefaultConfig().Routing

	namer := envelope.NewNamer(analyzer, lx, embedder, routing.NameReuseThreshold)
	router := envelope.NewRouter(namer, embedder, routing, nil)
	model := contextmodel.New(store, nil)
	require.NoError(t, model.Load(ctx))

	p := New(store, extract.New(analyzer, lx), router, model, opts...)
	p.Now = func() time.Time { return testNow }
	return p, store, model
}

func TestProcess_EndToEnd(t *testing.T) {
	ctx := context.Background()
	p, store, model := newTestPipeline(t)

	out, err := p.Process(ctx, "Remind me to submit the report for Q3 budget")
	require.NoError(t, err)
	require.False(t, out.Duplicate)
	require.True(t, out.CreatedEnvelope)
	require.Equal(t, envelope.StageCreated, out.RouteStage)
	require.Equal(t, card.TypeReminder, out.Card.Type)
	require.NotNil(t, out.Card.Assignee)
	require.Equal(t, "Me", *out.Card.Assignee)
	require.Equal(t, "Q3 Budget", out.Envelope.Name)
	require.Equal(t, out.Envelope.ID, out.Card.EnvelopeID)
	require.NotEmpty(t, out.Card.ID)

	require.Equal(t, 1, model.Get(contextmodel.Projects, "Q3 Budget"))
	require.Equal(t, 1, model.Get(contextmodel.People, "Me"))

	// same note again, with surrounding whitespace
	again, err := p.Process(ctx, "  Remind me to submit the report for Q3 budget \n")
	require.NoError(t, err)
	require.True(t, again.Duplicate)
	require.False(t, again.CreatedEnvelope)
	require.Equal(t, out.Card.ID, again.Card.ID)
	require.Equal(t, out.Envelope.ID, again.Envelope.ID)

	envs, err := store.ListEnvelopes(ctx)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	cards, err := store.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)

	require.Equal(t, 1, model.Get(contextmodel.Projects, "Q3 Budget"))
	require.Equal(t, 1, model.Get(contextmodel.People, "Me"))
}

func TestProcess_ExtractsPersonAndDate(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	out, err := p.Process(context.Background(), "Call Sarah about the Q3 budget next Monday")
	require.NoError(t, err)
	require.Equal(t, card.TypeTask, out.Card.Type)
	require.Equal(t, "Sarah", *out.Card.Assignee)
	require.NotNil(t, out.Card.DateText)
	require.NotNil(t, out.Card.DateParsed)
	require.Equal(t, time.Monday, out.Card.DateParsed.Weekday())
	require.True(t, out.Card.DateParsed.After(testNow))
	require.Equal(t, "Q3 Budget", out.Envelope.Name)
}

func TestProcess_EmptyNote(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	for _, note := range []string{"", "   ", "\n\t"} {
		_, err := p.Process(context.Background(), note)
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	}
}

func TestProcess_SecondNoteJoinsEnvelope(t *testing.T) {
	ctx := context.Background()
	p, store, model := newTestPipeline(t)

	first, err := p.Process(ctx, "Prepare the marketing plan")
	require.NoError(t, err)
	second, err := p.Process(ctx, "Share the marketing plan with the design team")
	require.NoError(t, err)

	require.Equal(t, first.Envelope.ID, second.Envelope.ID)
	require.Equal(t, envelope.StageKeyword, second.RouteStage)
	require.False(t, second.Duplicate)

	cards, err := store.ListCardsByEnvelope(ctx, first.Envelope.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.Equal(t, 2, model.Get(contextmodel.Projects, first.Envelope.Name))
	require.Equal(t, "Design Team", *second.Card.Assignee)
}

func TestProcess_OverrideReplacesFields(t *testing.T) {
	o := &fakeOverride{fields: &override.Fields{
		Assignee: "Priya",
		DateText: "tomorrow",
		Keywords: []string{"invoice"},
	}}
	p, _, _ := newTestPipeline(t, WithOverride(o))

	out, err := p.Process(context.Background(), "Send the invoice")
	require.NoError(t, err)
	require.Equal(t, 1, o.calls)
	require.Equal(t, "Priya", *out.Card.Assignee)
	require.Equal(t, "tomorrow", *out.Card.DateText)
	require.NotNil(t, out.Card.DateParsed)
	require.Equal(t, 6, out.Card.DateParsed.Day())
	require.Equal(t, []string{"invoice"}, out.Card.Keywords)
}

func TestProcess_OverrideFailureIsIgnored(t *testing.T) {
	o := &fakeOverride{err: fmt.Errorf("upstream unavailable")}
	m := metrics.New(prometheus.NewRegistry())
	p, _, _ := newTestPipeline(t, WithOverride(o), WithMetrics(m))

	out, err := p.Process(context.Background(), "Call Sarah about the Q3 budget")
	require.NoError(t, err)
	require.Equal(t, "Sarah", *out.Card.Assignee)
	require.Equal(t, 1, o.calls)
}

func TestProcess_ConcurrentNotesShareEnvelope(t *testing.T) {
	ctx := context.Background()
	p, store, _ := newTestPipeline(t)

	notes := []string{
		"Prepare the marketing plan",
		"Review the marketing plan",
		"Finalize the marketing plan",
		"Print the marketing plan",
	}
	var wg sync.WaitGroup
	errs := make([]error, len(notes))
	for i, n := range notes {
		wg.Add(1)
		go func(i int, n string) {
			defer wg.Done()
			_, errs[i] = p.Process(ctx, n)
		}(i, n)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	envs, err := store.ListEnvelopes(ctx)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	cards, err := store.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, len(notes))
}

func TestProcess_RoutingEmbedderFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	store := db.NewStore(database)

	// one unrelated envelope forces the similarity stage
	_, err = store.AddEnvelope(ctx, "Home Stuff", nil)
	require.NoError(t, err)

	lx := lexicon.Default()
	analyzer := nlp.NewRuleAnalyzer(lx)
	routing := config.DefaultConfig().Routing
	namer := envelope.NewNamer(analyzer, lx, embed.NewHashEmbedder(0), routing.NameReuseThreshold)
	router := envelope.NewRouter(namer, failingEmbedder{err: fmt.Errorf("embeddings endpoint unavailable")}, routing, nil)
	model := contextmodel.New(store, nil)
	require.NoError(t, model.Load(ctx))
	p := New(store, extract.New(analyzer, lx), router, model)

	_, err = p.Process(ctx, "Prepare the marketing plan")
	require.Error(t, err)
	if !errors.Is(err, errors.ErrInternal) {
		t.Errorf("Process() error = %v, want code %s", err, errors.ErrInternal)
	}
	require.False(t, errors.Is(err, errors.ErrStoreFailure))

	cards, err := store.ListCards(ctx)
	require.NoError(t, err)
	require.Empty(t, cards)
}

func TestProcess_RoutesWithCountsFromOtherWriters(t *testing.T) {
	ctx := context.Background()
	p, store, model := newTestPipeline(t)

	// another process bumped the counts after this model loaded
	other := contextmodel.New(store, nil)
	require.NoError(t, other.Load(ctx))
	err := store.WithTx(ctx, func(tx *db.Store) error {
		env, err := tx.AddEnvelope(ctx, "Q3 Budget", nil)
		if err != nil {
			return err
		}
		c := &card.Card{Description: "Book the Q3 budget review", Assignee: strPtr("Sarah"), Keywords: []string{"budget"}, EnvelopeID: env.ID}
		if err := tx.AddCard(ctx, c); err != nil {
			return err
		}
		_, err = other.Record(ctx, tx, c)
		return err
	})
	require.NoError(t, err)
	require.Zero(t, model.Get(contextmodel.People, "Sarah"))

	_, err = p.Process(ctx, "Remind me to submit the report for Q3 budget")
	require.NoError(t, err)

	require.Equal(t, 2, model.Get(contextmodel.Projects, "Q3 Budget"))
	require.Equal(t, 1, model.Get(contextmodel.People, "Sarah"))
	require.Equal(t, 1, model.Get(contextmodel.People, "Me"))
}
