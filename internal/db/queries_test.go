package db

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

// steppedClock advances one second per call so created_at ordering is observable.
func steppedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func stringPtr(s string) *string { return &s }

func TestEnvelopes_AddListGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Now = steppedClock(time.Unix(1_700_000_000, 0))

	first, err := s.AddEnvelope(ctx, "Q3 Budget", nil)
	require.NoError(t, err)
	second, err := s.AddEnvelope(ctx, "Groceries", stringPtr("food shopping"))
	require.NoError(t, err)

	list, err := s.ListEnvelopes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID, "newest first")
	require.Equal(t, first.ID, list[1].ID)
	require.Equal(t, "q3 budget", list[1].NameNorm)

	got, err := s.GetEnvelope(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, "Groceries", got.Name)
	require.Equal(t, "food shopping", *got.Description)

	_, err = s.GetEnvelope(ctx, "missing")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestEnvelopes_SameSecondOrderedByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	fixed := time.Unix(1_700_000_000, 0)
	s.Now = func() time.Time { return fixed }

	var ids []string
	for i := 0; i < 3; i++ {
		e, err := s.AddEnvelope(ctx, fmt.Sprintf("E%d", i), nil)
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	list, err := s.ListEnvelopes(ctx)
	require.NoError(t, err)
	require.Equal(t, ids[2], list[0].ID)
	require.Equal(t, ids[0], list[2].ID)
}

func TestCards_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	env, err := s.AddEnvelope(ctx, "Q3 Budget", nil)
	require.NoError(t, err)

	when := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	c := &card.Card{
		Description: "Call Sarah about the Q3 budget next Monday",
		Type:        card.TypeTask,
		DateText:    stringPtr("next Monday"),
		DateParsed:  &when,
		Assignee:    stringPtr("Sarah"),
		Keywords:    []string{"sarah", "q3", "budget"},
		EnvelopeID:  env.ID,
	}
	require.NoError(t, s.AddCard(ctx, c))
	require.NotEmpty(t, c.ID)
	require.NotZero(t, c.CreatedAt)

	got, err := s.GetCard(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Description, got.Description)
	require.Equal(t, "call sarah about the q3 budget next monday", got.DescriptionNorm)
	require.Equal(t, card.TypeTask, got.Type)
	require.Equal(t, "next Monday", *got.DateText)
	require.True(t, when.Equal(*got.DateParsed))
	require.Equal(t, "Sarah", *got.Assignee)
	require.Equal(t, []string{"sarah", "q3", "budget"}, got.Keywords)

	found, err := s.FindCardInEnvelope(ctx, env.ID, "call sarah about the q3 budget next monday")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, c.ID, found.ID)

	none, err := s.FindCardInEnvelope(ctx, env.ID, "something else")
	require.NoError(t, err)
	require.Nil(t, none)

	_, err = s.GetCard(ctx, "missing")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCards_ListByEnvelope(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.AddEnvelope(ctx, "A", nil)
	require.NoError(t, err)
	b, err := s.AddEnvelope(ctx, "B", nil)
	require.NoError(t, err)

	for i, envID := range []string{a.ID, b.ID, a.ID} {
		require.NoError(t, s.AddCard(ctx, &card.Card{
			Description: fmt.Sprintf("note %d", i),
			Type:        card.TypeIdea,
			EnvelopeID:  envID,
		}))
	}

	all, err := s.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "note 0", all[0].Description)

	inA, err := s.ListCardsByEnvelope(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, inA, 2)
	require.Equal(t, "note 2", inA[1].Description)

	counts, err := s.CountCardsByEnvelope(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{a.ID: 2, b.ID: 1}, counts)
}

func TestCards_UnknownEnvelopeRejected(t *testing.T) {
	s := newTestStore(t)
	err := s.AddCard(context.Background(), &card.Card{Description: "x", Type: card.TypeIdea, EnvelopeID: "nope"})
	require.True(t, errors.Is(err, errors.ErrStoreFailure))
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.GetContextValue(ctx, KeyPeople)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SetContextValue(ctx, KeyPeople, []byte(`{"Sarah":1}`)))
	require.NoError(t, s.SetContextValue(ctx, KeyPeople, []byte(`{"Sarah":2}`)))

	raw, ok, err := s.GetContextValue(ctx, KeyPeople)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"Sarah":2}`, string(raw))
}

func TestRecommendations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Now = steppedClock(time.Unix(1_700_000_000, 0))

	_, err := s.AppendRecommendation(ctx, card.KindDuplicate, map[string]any{"description": "a"})
	require.NoError(t, err)
	last, err := s.AppendRecommendation(ctx, card.KindSuggestion, map[string]any{"type": "add_date"})
	require.NoError(t, err)

	recent, err := s.ListRecentRecommendations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, last.ID, recent[0].ID)
	require.Equal(t, card.KindSuggestion, recent[0].Kind)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(recent[0].Payload, &payload))
	require.Equal(t, "add_date", payload["type"])

	all, err := s.ListRecentRecommendations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	n, err := s.ClearRecommendations(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	all, err = s.ListRecentRecommendations(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := fmt.Errorf("boom")
	err := s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.AddEnvelope(ctx, "Discarded", nil); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := s.ListEnvelopes(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	err = s.WithTx(ctx, func(tx *Store) error {
		_, err := tx.AddEnvelope(ctx, "Kept", nil)
		return err
	})
	require.NoError(t, err)

	list, err = s.ListEnvelopes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
