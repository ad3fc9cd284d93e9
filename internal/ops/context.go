package ops

import (
	"context"
	"fmt"
	"sort"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/contextmodel"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

// ContextInput contains parameters for the ContextSnapshot operation.
type ContextInput struct {
	Dimension string // optional: projects, people, themes
	Limit     int    // per dimension; 0 means all
}

// ContextEntry is one key and its count.
type ContextEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ContextOutput lists context counts per dimension, highest first.
type ContextOutput struct {
	Projects []ContextEntry `json:"projects,omitempty"`
	People   []ContextEntry `json:"people,omitempty"`
	Themes   []ContextEntry `json:"themes,omitempty"`
}

// ContextSnapshot reports the stored context counts, refreshing the model
// with writes made by other processes.
func (s *Service) ContextSnapshot(ctx context.Context, input ContextInput) (*ContextOutput, error) {
	want := func(d contextmodel.Dimension) bool {
		return input.Dimension == "" || contextmodel.Dimension(input.Dimension) == d
	}
	if input.Dimension != "" && !want(contextmodel.Projects) && !want(contextmodel.People) && !want(contextmodel.Themes) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown dimension %q (want projects, people or themes)", input.Dimension))
	}

	if err := s.Model.Load(ctx); err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(err)
	}
	snap := s.Model.Snapshot()

	out := &ContextOutput{}
	if want(contextmodel.Projects) {
		out.Projects = ranked(snap.Projects, input.Limit)
	}
	if want(contextmodel.People) {
		out.People = ranked(snap.People, input.Limit)
	}
	if want(contextmodel.Themes) {
		out.Themes = ranked(snap.Themes, input.Limit)
	}
	return out, nil
}

// ranked orders counts by count descending, then key.
func ranked(counts map[string]int, limit int) []ContextEntry {
	out := make([]ContextEntry, 0, len(counts))
	for k, n := range counts {
		out = append(out, ContextEntry{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
