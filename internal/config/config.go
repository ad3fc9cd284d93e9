package config

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Routing holds the envelope assignment thresholds.
type Routing struct {
	// SimilarityGate is the minimum similarity for an envelope to be scored
	// without lexical overlap.
	SimilarityGate float64 `json:"similarity_gate,omitempty"`

	// AcceptScore is the minimum boosted score for a similarity match.
	AcceptScore float64 `json:"accept_score,omitempty"`

	// NameReuseThreshold is the score above which the namer reuses an existing name.
	NameReuseThreshold float64 `json:"name_reuse_threshold,omitempty"`

	// ProjectBoost is added per prior card in the candidate envelope.
	ProjectBoost float64 `json:"project_boost,omitempty"`

	// ThemeBoost is added per prior occurrence of each note keyword.
	ThemeBoost float64 `json:"theme_boost,omitempty"`
}

// Analysis holds batch analyzer parameters.
type Analysis struct {
	MinClusterSize  int   `json:"min_cluster_size,omitempty"`
	ClusterSeed     int64 `json:"cluster_seed,omitempty"`
	ClusterRestarts int   `json:"cluster_restarts,omitempty"`
	MaxSampleTasks  int   `json:"max_sample_tasks,omitempty"`
	EmbeddingDims   int   `json:"embedding_dims,omitempty"`

	// EmbedWorkers bounds concurrent embedding during a run. 0 means GOMAXPROCS.
	EmbedWorkers int `json:"embed_workers,omitempty"`

	// Embedder is "hash" (local) or "openai" (uses the override endpoint and key).
	Embedder       string `json:"embedder,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// Override configures the optional LLM pre-extraction step.
type Override struct {
	Enabled bool   `json:"enabled,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv   string `json:"api_key_env,omitempty"`
	TimeoutSecs int    `json:"timeout_secs,omitempty"`
}

// Config holds application configuration.
type Config struct {
	Routing  Routing  `json:"routing"`
	Analysis Analysis `json:"analysis"`
	Override Override `json:"override"`

	// NLPBackend selects the text analyzer: "prose" (statistical) or "rules" (lexicon only).
	NLPBackend string `json:"nlp_backend,omitempty"`

	// VocabularyPath points to a YAML file replacing the built-in vocabulary tables.
	VocabularyPath string `json:"vocabulary_path,omitempty"`

	// ScheduleIntervalSecs is the period of `cpa watch`.
	ScheduleIntervalSecs int `json:"schedule_interval_secs,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.cpa/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Routing: Routing{
			SimilarityGate:     0.6,
			AcceptScore:        0.6,
			NameReuseThreshold: 0.75,
			ProjectBoost:       0.1,
			ThemeBoost:         0.05,
		},
		Analysis: Analysis{
			MinClusterSize:  2,
			ClusterSeed:     42,
			ClusterRestarts: 10,
			MaxSampleTasks:  5,
			EmbeddingDims:   384,
			Embedder:        "hash",
			EmbeddingModel:  "text-embedding-3-small",
		},
		Override: Override{
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			TimeoutSecs: 10,
		},
		NLPBackend:           "prose",
		ScheduleIntervalSecs: 3600,
		LogLevel:             "info",
	}
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.cpa) and repo (.cpa) directories.
// Repo config is found by walking upward from startDir to find the nearest .cpa/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .cpa/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".cpa", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero-valued config (not defaults) if the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Routing = Routing{
		SimilarityGate:     pick(overlay.Routing.SimilarityGate, base.Routing.SimilarityGate),
		AcceptScore:        pick(overlay.Routing.AcceptScore, base.Routing.AcceptScore),
		NameReuseThreshold: pick(overlay.Routing.NameReuseThreshold, base.Routing.NameReuseThreshold),
		ProjectBoost:       pick(overlay.Routing.ProjectBoost, base.Routing.ProjectBoost),
		ThemeBoost:         pick(overlay.Routing.ThemeBoost, base.Routing.ThemeBoost),
	}

	result.Analysis = Analysis{
		MinClusterSize:  pick(overlay.Analysis.MinClusterSize, base.Analysis.MinClusterSize),
		ClusterSeed:     pick(overlay.Analysis.ClusterSeed, base.Analysis.ClusterSeed),
		ClusterRestarts: pick(overlay.Analysis.ClusterRestarts, base.Analysis.ClusterRestarts),
		MaxSampleTasks:  pick(overlay.Analysis.MaxSampleTasks, base.Analysis.MaxSampleTasks),
		EmbeddingDims:   pick(overlay.Analysis.EmbeddingDims, base.Analysis.EmbeddingDims),
		EmbedWorkers:    pick(overlay.Analysis.EmbedWorkers, base.Analysis.EmbedWorkers),
		Embedder:        pick(overlay.Analysis.Embedder, base.Analysis.Embedder),
		EmbeddingModel:  pick(overlay.Analysis.EmbeddingModel, base.Analysis.EmbeddingModel),
	}

	result.Override = Override{
		Enabled:     base.Override.Enabled || overlay.Override.Enabled,
		BaseURL:     pick(overlay.Override.BaseURL, base.Override.BaseURL),
		Model:       pick(overlay.Override.Model, base.Override.Model),
		APIKeyEnv:   pick(overlay.Override.APIKeyEnv, base.Override.APIKeyEnv),
		TimeoutSecs: pick(overlay.Override.TimeoutSecs, base.Override.TimeoutSecs),
	}

	result.NLPBackend = pick(overlay.NLPBackend, base.NLPBackend)
	result.VocabularyPath = pick(overlay.VocabularyPath, base.VocabularyPath)
	result.ScheduleIntervalSecs = pick(overlay.ScheduleIntervalSecs, base.ScheduleIntervalSecs)
	result.LogLevel = pick(overlay.LogLevel, base.LogLevel)
	result.DBMaxOpenConns = pick(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pick(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// pick returns overlay unless it is the zero value.
func pick[T comparable](overlay, base T) T {
	var zero T
	if overlay == zero {
		return base
	}
	return overlay
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
