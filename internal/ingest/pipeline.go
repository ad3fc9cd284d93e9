// Package ingest turns one raw note into a stored card.
package ingest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/contextmodel"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/db"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/envelope"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/extract"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/metrics"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/override"
)

// Outcome is the result of processing one note.
type Outcome struct {
	Card            *card.Card     `json:"card"`
	Envelope        *card.Envelope `json:"envelope"`
	Duplicate       bool           `json:"duplicate"`
	RouteStage      envelope.Stage `json:"route_stage,omitempty"`
	CreatedEnvelope bool           `json:"created_envelope"`
}

// Pipeline extracts, routes, deduplicates and stores notes. Writers are
// serialized so concurrent notes cannot create two envelopes for one name.
type Pipeline struct {
	store     *db.Store
	extractor *extract.Extractor
	router    *envelope.Router
	model     *contextmodel.Model
	override  override.Extractor
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// Now is the reference time for relative dates.
	Now func() time.Time

	mu sync.Mutex
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOverride installs an optional override extractor.
func WithOverride(o override.Extractor) Option {
	return func(p *Pipeline) { p.override = o }
}

// WithMetrics records ingestion counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a Pipeline. model must already be loaded.
func New(store *db.Store, extractor *extract.Extractor, router *envelope.Router, model *contextmodel.Model, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		extractor: extractor,
		router:    router,
		model:     model,
		logger:    slog.Default(),
		Now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process stores note as a card, or returns the existing card when the same
// note is already in its envelope.
func (p *Pipeline) Process(ctx context.Context, note string) (*Outcome, error) {
	text := strings.TrimSpace(note)
	if text == "" {
		return nil, errors.NewInvalidRequest("note is empty")
	}

	now := p.Now()
	res, err := p.extractor.Extract(text, now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	p.applyOverride(ctx, text, now, &res)

	c := &card.Card{
		Description: text,
		Type:        p.extractor.Classify(text),
		DateText:    res.DateText,
		DateParsed:  res.DateParsed,
		Assignee:    res.Assignee,
		Keywords:    res.Keywords,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := &Outcome{}
	var staged contextmodel.Snapshot
	err = p.store.WithTx(ctx, func(tx *db.Store) error {
		envs, err := tx.ListEnvelopes(ctx)
		if err != nil {
			return err
		}
		current, err := p.model.Read(ctx, tx)
		if err != nil {
			return err
		}
		staged = current
		d, err := p.router.Route(ctx, tx, envelope.Input{
			Keywords:  c.Keywords,
			Text:      text,
			Envelopes: envs,
			Context:   current,
		})
		if err != nil {
			return routeError(err)
		}
		env, err := tx.GetEnvelope(ctx, d.EnvelopeID)
		if err != nil {
			return err
		}
		out.Envelope = env
		out.RouteStage = d.Stage
		out.CreatedEnvelope = d.Created

		existing, err := tx.FindCardInEnvelope(ctx, env.ID, card.Normalize(text))
		if err != nil {
			return err
		}
		if existing != nil {
			out.Card = existing
			out.Duplicate = true
			return nil
		}

		c.EnvelopeID = env.ID
		if err := tx.AddCard(ctx, c); err != nil {
			return err
		}
		out.Card = c

		staged, err = p.model.Record(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}

	p.model.Commit(staged)
	if out.Duplicate {
		p.logger.Debug("duplicate note", "card", out.Card.ID, "envelope", out.Envelope.ID)
	} else {
		p.logger.Info("note stored",
			"card", c.ID, "type", c.Type, "envelope", out.Envelope.Name, "stage", out.RouteStage)
	}
	p.metrics.NoteStored(string(out.RouteStage), out.CreatedEnvelope, out.Duplicate)
	return out, nil
}

// applyOverride replaces extracted fields with the override's non-empty
// values. Failures are logged and ignored.
func (p *Pipeline) applyOverride(ctx context.Context, text string, now time.Time, res *extract.Result) {
	if p.override == nil {
		return
	}
	f, err := p.override.Extract(ctx, text)
	if err != nil {
		p.metrics.OverrideFailed()
		p.logger.Warn("override failed", "code", errors.ErrOverrideFailure, "error", err)
		return
	}
	if f.Empty() {
		return
	}
	if f.Assignee != "" {
		a := f.Assignee
		res.Assignee = &a
	}
	if f.DateText != "" {
		dt := f.DateText
		res.DateText = &dt
		res.DateParsed = nil
		if _, parsed := p.extractor.FindDate(dt, now); parsed != nil {
			res.DateParsed = parsed
		}
	}
	if len(f.Keywords) > 0 {
		res.Keywords = f.Keywords
	}
}

// routeError keeps coded errors from the store and reports anything else
// (an embedder failure, say) as internal.
func routeError(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewInternal(err)
}

func storeError(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewStoreFailure("process note", err)
}
