package ops

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/analyze"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/config"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/contextmodel"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/db"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/embed"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/envelope"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/extract"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/ingest"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/lexicon"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/metrics"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/nlp"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/override"
)

// Service wires the engine components over one database.
type Service struct {
	Store    *db.Store
	Config   *config.Config
	Paths    PathPolicy
	Lexicon  *lexicon.Lexicon
	Model    *contextmodel.Model
	Namer    *envelope.Namer
	Pipeline *ingest.Pipeline
	Analyzer *analyze.Analyzer
	Logger   *slog.Logger
}

// Options supplies optional collaborators to New. Zero values build
// everything from the config.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Analyzer nlp.Analyzer
	Embedder embed.Embedder
	Override override.Extractor
}

// New builds a Service from cfg. baseDir is the directory holding the
// database; its exports/ subdirectory is always an allowed import/export
// location.
func New(ctx context.Context, database *sql.DB, cfg *config.Config, baseDir string, opts Options) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lx := lexicon.Default()
	if cfg.VocabularyPath != "" {
		loaded, err := lexicon.Load(cfg.VocabularyPath)
		if err != nil {
			return nil, err
		}
		lx = loaded
	}

	analyzer := opts.Analyzer
	if analyzer == nil {
		a, err := nlp.New(cfg.NLPBackend, lx)
		if err != nil {
			return nil, err
		}
		analyzer = a
	}

	embedder := opts.Embedder
	if embedder == nil {
		e, err := newEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		embedder = e
	}

	ovr := opts.Override
	if ovr == nil && cfg.Override.Enabled {
		key := os.Getenv(cfg.Override.APIKeyEnv)
		if key == "" {
			logger.Warn("override enabled but API key is not set; continuing without it", "env", cfg.Override.APIKeyEnv)
		} else {
			ovr = override.NewOpenAI(key, cfg.Override.BaseURL, cfg.Override.Model,
				time.Duration(cfg.Override.TimeoutSecs)*time.Second)
		}
	}

	store := db.NewStore(database)
	model := contextmodel.New(store, logger)
	if err := model.Load(ctx); err != nil {
		return nil, err
	}

	namer := envelope.NewNamer(analyzer, lx, embedder, cfg.Routing.NameReuseThreshold)
	router := envelope.NewRouter(namer, embedder, cfg.Routing, logger)
	extractor := extract.New(analyzer, lx, extract.WithLogger(logger))

	pipelineOpts := []ingest.Option{ingest.WithLogger(logger), ingest.WithMetrics(opts.Metrics)}
	if ovr != nil {
		pipelineOpts = append(pipelineOpts, ingest.WithOverride(ovr))
	}

	return &Service{
		Store:    store,
		Config:   cfg,
		Paths:    PathPolicy{ExportsDir: filepath.Join(baseDir, "exports"), Config: cfg},
		Lexicon:  lx,
		Model:    model,
		Namer:    namer,
		Pipeline: ingest.New(store, extractor, router, model, pipelineOpts...),
		Analyzer: analyze.New(store, embedder, lx.ActionVerbs(), cfg.Analysis,
			analyze.WithLogger(logger), analyze.WithMetrics(opts.Metrics)),
		Logger: logger,
	}, nil
}

func newEmbedder(cfg *config.Config) (embed.Embedder, error) {
	switch cfg.Analysis.Embedder {
	case "", "hash":
		return embed.NewHashEmbedder(cfg.Analysis.EmbeddingDims), nil
	case "openai":
		key := os.Getenv(cfg.Override.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("embedder openai requires %s to be set", cfg.Override.APIKeyEnv)
		}
		return embed.NewOpenAIEmbedder(key, cfg.Override.BaseURL, cfg.Analysis.EmbeddingModel), nil
	}
	return nil, fmt.Errorf("unknown embedder %q", cfg.Analysis.Embedder)
}
