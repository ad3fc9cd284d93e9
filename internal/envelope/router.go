package envelope

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/config"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/contextmodel"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/embed"
)

// Creator creates envelopes. *db.Store satisfies it.
type Creator interface {
	AddEnvelope(ctx context.Context, name string, description *string) (*card.Envelope, error)
}

// Stage records which routing step chose the envelope.
type Stage string

const (
	StageKeyword    Stage = "keyword"
	StageThematic   Stage = "thematic"
	StageSimilarity Stage = "similarity"
	StageCreated    Stage = "created"
)

// Input is everything routing depends on.
type Input struct {
	Keywords  []string
	Text      string
	Envelopes []card.Envelope
	Context   contextmodel.Snapshot
}

// Decision is the routing outcome.
type Decision struct {
	EnvelopeID   string  `json:"envelope_id"`
	EnvelopeName string  `json:"envelope_name"`
	Stage        Stage   `json:"stage"`
	Created      bool    `json:"created"`
	Score        float64 `json:"score,omitempty"`
}

// Router picks or creates the envelope for a note. Given the same envelopes
// and context snapshot it always returns the same decision.
type Router struct {
	namer    *Namer
	embedder embed.Embedder
	cfg      config.Routing
	logger   *slog.Logger
}

// NewRouter returns a Router.
func NewRouter(namer *Namer, embedder embed.Embedder, cfg config.Routing, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{namer: namer, embedder: embedder, cfg: cfg, logger: logger}
}

// Namer returns the namer used for thematic names.
func (r *Router) Namer() *Namer { return r.namer }

// Route runs the routing stages in order; the first that matches wins. When
// none match, a new envelope is created through creator.
func (r *Router) Route(ctx context.Context, creator Creator, in Input) (Decision, error) {
	envelopes := newestFirst(in.Envelopes)

	if d, ok := r.byKeyword(envelopes, in.Keywords); ok {
		return d, nil
	}

	name, err := r.namer.Name(ctx, in.Text, nil)
	if err != nil {
		return Decision{}, err
	}

	if d, ok := byThematicName(envelopes, name); ok {
		return d, nil
	}

	d, ok, err := r.bySimilarity(ctx, envelopes, in)
	if err != nil {
		return Decision{}, err
	}
	if ok {
		return d, nil
	}

	env, err := creator.AddEnvelope(ctx, name, nil)
	if err != nil {
		return Decision{}, err
	}
	r.logger.Debug("envelope created", "id", env.ID, "name", env.Name)
	return Decision{EnvelopeID: env.ID, EnvelopeName: env.Name, Stage: StageCreated, Created: true}, nil
}

// newestFirst returns a copy ordered by creation time, newest first, with
// the ID as tie-break.
func newestFirst(envs []card.Envelope) []card.Envelope {
	out := append([]card.Envelope(nil), envs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// byKeyword matches the first envelope whose normalized name contains any keyword.
func (r *Router) byKeyword(envelopes []card.Envelope, keywords []string) (Decision, bool) {
	for _, env := range envelopes {
		nameNorm := card.Normalize(env.Name)
		for _, k := range keywords {
			k = strings.ToLower(k)
			if k != "" && strings.Contains(nameNorm, k) {
				return Decision{EnvelopeID: env.ID, EnvelopeName: env.Name, Stage: StageKeyword}, true
			}
		}
	}
	return Decision{}, false
}

func byThematicName(envelopes []card.Envelope, name string) (Decision, bool) {
	want := card.Normalize(name)
	for _, env := range envelopes {
		if card.Normalize(env.Name) == want {
			return Decision{EnvelopeID: env.ID, EnvelopeName: env.Name, Stage: StageThematic}, true
		}
	}
	return Decision{}, false
}

// bySimilarity scores each envelope as similarity plus context boosts. Only
// envelopes that are similar enough, or share a keyword, are candidates; the
// best candidate must reach AcceptScore.
func (r *Router) bySimilarity(ctx context.Context, envelopes []card.Envelope, in Input) (Decision, bool, error) {
	if len(envelopes) == 0 {
		return Decision{}, false, nil
	}

	texts := make([]string, 0, len(envelopes)+1)
	texts = append(texts, strings.ToLower(in.Text))
	for _, env := range envelopes {
		texts = append(texts, strings.ToLower(envelopeText(env)))
	}
	vecs, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return Decision{}, false, err
	}

	themeCount := 0
	for _, k := range in.Keywords {
		themeCount += in.Context.Get(contextmodel.Themes, k)
	}
	themeBoost := r.cfg.ThemeBoost * float64(themeCount)

	var best *card.Envelope
	bestScore := 0.0
	for i := range envelopes {
		env := &envelopes[i]
		sim := embed.Cosine(vecs[0], vecs[i+1])
		total := sim + r.cfg.ProjectBoost*float64(in.Context.Get(contextmodel.Projects, env.Name)) + themeBoost

		if total > bestScore && (sim > r.cfg.SimilarityGate || overlaps(texts[i+1], in.Keywords)) {
			best, bestScore = env, total
		}
	}

	if best == nil || bestScore < r.cfg.AcceptScore {
		return Decision{}, false, nil
	}
	return Decision{EnvelopeID: best.ID, EnvelopeName: best.Name, Stage: StageSimilarity, Score: bestScore}, true, nil
}

func envelopeText(env card.Envelope) string {
	text := env.Name
	if env.Description != nil {
		text += " " + *env.Description
	}
	return text
}

func overlaps(envText string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(envText, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
