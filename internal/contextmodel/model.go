// Package contextmodel keeps running frequency counts of the envelopes,
// people and themes seen in ingested cards. The counts bias routing.
package contextmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
)

// Dimension names one family of counts. The values double as store keys.
type Dimension string

const (
	Projects Dimension = "projects"
	People   Dimension = "people"
	Themes   Dimension = "themes"
)

// Dimensions lists every dimension in storage order.
var Dimensions = []Dimension{Projects, People, Themes}

// Store is the persistence the model needs. *db.Store satisfies it, inside
// or outside a transaction.
type Store interface {
	GetContextValue(ctx context.Context, key string) ([]byte, bool, error)
	SetContextValue(ctx context.Context, key string, value []byte) error
	GetEnvelope(ctx context.Context, id string) (*card.Envelope, error)
}

// Snapshot is a point-in-time copy of all counts.
type Snapshot struct {
	Projects map[string]int `json:"projects"`
	People   map[string]int `json:"people"`
	Themes   map[string]int `json:"themes"`
}

// NewSnapshot returns a snapshot with empty, non-nil maps.
func NewSnapshot() Snapshot {
	return Snapshot{
		Projects: map[string]int{},
		People:   map[string]int{},
		Themes:   map[string]int{},
	}
}

// Get returns the count for key in dim, or 0.
func (s Snapshot) Get(dim Dimension, key string) int {
	return s.dim(dim)[key]
}

func (s Snapshot) dim(d Dimension) map[string]int {
	switch d {
	case Projects:
		return s.Projects
	case People:
		return s.People
	case Themes:
		return s.Themes
	}
	return nil
}

// Clone deep-copies s.
func (s Snapshot) Clone() Snapshot {
	out := NewSnapshot()
	for _, d := range Dimensions {
		dst := out.dim(d)
		for k, v := range s.dim(d) {
			dst[k] = v
		}
	}
	return out
}

// Model caches the counts in memory. The store is the source of truth:
// Record rebuilds from the rows visible to the caller's write transaction,
// so counts written by other processes are never overwritten. Commit
// installs the result once that transaction has committed.
type Model struct {
	store  Store
	logger *slog.Logger

	mu    sync.RWMutex
	state Snapshot
}

// New returns an empty model backed by store. Call Load before use.
func New(store Store, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{store: store, logger: logger, state: NewSnapshot()}
}

// Load reads all dimensions from the store. Missing dimensions are empty.
func (m *Model) Load(ctx context.Context) error {
	loaded, err := read(ctx, m.store)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.state = loaded
	m.mu.Unlock()
	m.logger.Debug("context model loaded",
		"projects", len(loaded.Projects), "people", len(loaded.People), "themes", len(loaded.Themes))
	return nil
}

func read(ctx context.Context, s Store) (Snapshot, error) {
	out := NewSnapshot()
	for _, d := range Dimensions {
		raw, ok, err := s.GetContextValue(ctx, string(d))
		if err != nil {
			return Snapshot{}, err
		}
		if !ok {
			continue
		}
		var counts map[string]int
		if err := json.Unmarshal(raw, &counts); err != nil {
			return Snapshot{}, fmt.Errorf("decode context %s: %w", d, err)
		}
		dst := out.dim(d)
		for k, v := range counts {
			dst[k] = v
		}
	}
	return out, nil
}

// Read returns the counts stored in s. Inside a write transaction this is
// the latest committed state.
func (m *Model) Read(ctx context.Context, s Store) (Snapshot, error) {
	return read(ctx, s)
}

// Get returns the current count for key in dim.
func (m *Model) Get(dim Dimension, key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Get(dim, key)
}

// Snapshot returns a deep copy of the current counts.
func (m *Model) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// Record reads the counts through tx, adds c and writes them back. tx must
// hold the database write lock. The model itself is unchanged until Commit
// is called with the returned snapshot.
func (m *Model) Record(ctx context.Context, tx Store, c *card.Card) (Snapshot, error) {
	staged, err := read(ctx, tx)
	if err != nil {
		return Snapshot{}, err
	}

	if c.EnvelopeID != "" {
		env, err := tx.GetEnvelope(ctx, c.EnvelopeID)
		if err != nil {
			return Snapshot{}, err
		}
		staged.Projects[env.Name]++
	}
	if c.Assignee != nil && *c.Assignee != "" {
		staged.People[*c.Assignee]++
	}
	for _, kw := range c.Keywords {
		staged.Themes[kw]++
	}

	for _, d := range Dimensions {
		data, err := json.Marshal(staged.dim(d))
		if err != nil {
			return Snapshot{}, err
		}
		if err := tx.SetContextValue(ctx, string(d), data); err != nil {
			return Snapshot{}, err
		}
	}
	return staged, nil
}

// Commit installs a snapshot produced by Record.
func (m *Model) Commit(staged Snapshot) {
	m.mu.Lock()
	m.state = staged
	m.mu.Unlock()
}
