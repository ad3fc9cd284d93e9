// Package analyze mines stored cards for duplicates, scheduling conflicts,
// idea clusters and next-step suggestions.
package analyze

import (
	"context"
	"log/slog"
	"time"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/config"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/db"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/embed"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/metrics"
)

// Analyzer runs batch analysis over the card store. It never modifies cards
// or envelopes; it only appends recommendations.
type Analyzer struct {
	store       *db.Store
	embedder    embed.Embedder
	actionVerbs []string
	cfg         config.Analysis
	metrics     *metrics.Metrics
	logger      *slog.Logger

	// Now stamps Summary.RunAt.
	Now func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMetrics records run counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an Analyzer. actionVerbs are the phrases that trigger add-date
// suggestions, checked in order.
func New(store *db.Store, embedder embed.Embedder, actionVerbs []string, cfg config.Analysis, opts ...Option) *Analyzer {
	a := &Analyzer{
		store:       store,
		embedder:    embedder,
		actionVerbs: actionVerbs,
		cfg:         cfg,
		logger:      slog.Default(),
		Now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunOnce analyzes a consistent snapshot of the store and appends every
// finding as a recommendation. Repeated runs append repeated findings.
func (a *Analyzer) RunOnce(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	counts := make(map[string]int)
	defer func() {
		a.metrics.AnalysisRun(time.Since(start), err, counts)
	}()

	var cards []card.Card
	var numEnvelopes int
	err = a.store.ReadTx(ctx, func(tx *db.Store) error {
		var err error
		if cards, err = tx.ListCards(ctx); err != nil {
			return err
		}
		envs, err := tx.ListEnvelopes(ctx)
		numEnvelopes = len(envs)
		return err
	})
	if err != nil {
		return nil, err
	}

	res = &Result{
		Duplicates: findDuplicates(cards),
		Conflicts:  findConflicts(cards),
		NextSteps:  suggestNextSteps(cards, a.actionVerbs, a.cfg.MaxSampleTasks),
	}
	res.IdeaClusters, err = a.clusterCards(ctx, cards)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	err = a.store.WithTx(ctx, func(tx *db.Store) error {
		appendAll := func(kind card.RecommendationKind, n int, item func(i int) any) error {
			for i := 0; i < n; i++ {
				if _, err := tx.AppendRecommendation(ctx, kind, item(i)); err != nil {
					return err
				}
			}
			counts[string(kind)] += n
			return nil
		}
		if err := appendAll(card.KindDuplicate, len(res.Duplicates), func(i int) any { return res.Duplicates[i] }); err != nil {
			return err
		}
		if err := appendAll(card.KindAssigneeConflict, len(res.Conflicts), func(i int) any { return res.Conflicts[i] }); err != nil {
			return err
		}
		if err := appendAll(card.KindClusterSuggestion, len(res.IdeaClusters), func(i int) any { return res.IdeaClusters[i] }); err != nil {
			return err
		}
		return appendAll(card.KindSuggestion, len(res.NextSteps), func(i int) any { return res.NextSteps[i] })
	})
	if err != nil {
		clear(counts)
		return nil, err
	}

	res.Summary = Summary{
		NumCards:       len(cards),
		NumEnvelopes:   numEnvelopes,
		NumDuplicates:  len(res.Duplicates),
		NumConflicts:   len(res.Conflicts),
		NumClusters:    len(res.IdeaClusters),
		NumSuggestions: len(res.NextSteps),
		RunAt:          a.Now().Unix(),
	}
	a.logger.Info("analysis complete",
		"cards", res.Summary.NumCards,
		"duplicates", res.Summary.NumDuplicates,
		"conflicts", res.Summary.NumConflicts,
		"clusters", res.Summary.NumClusters,
		"suggestions", res.Summary.NumSuggestions,
	)
	return res, nil
}

// Recent returns up to limit recommendations, newest first.
func (a *Analyzer) Recent(ctx context.Context, limit int) ([]card.Recommendation, error) {
	return a.store.ListRecentRecommendations(ctx, limit)
}

// Clear deletes every recommendation and returns how many were removed.
func (a *Analyzer) Clear(ctx context.Context) (int64, error) {
	n, err := a.store.ClearRecommendations(ctx)
	if err != nil {
		return 0, err
	}
	a.logger.Info("recommendations cleared", "count", n)
	return n, nil
}
