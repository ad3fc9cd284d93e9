package ops

import (
	"context"
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/db"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/envelope"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

// EnvelopeItem is an envelope with its card count.
type EnvelopeItem struct {
	card.Envelope
	CardCount int `json:"card_count"`
}

// ListEnvelopesInput contains parameters for the ListEnvelopes operation.
type ListEnvelopesInput struct {
	Limit  int // default: 20, max: 100
	Offset int
}

// ListEnvelopesOutput contains one page of envelopes, newest first.
type ListEnvelopesOutput struct {
	Items      []EnvelopeItem `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// ListEnvelopes returns envelopes newest first with their card counts.
func (s *Service) ListEnvelopes(ctx context.Context, input ListEnvelopesInput) (*ListEnvelopesOutput, error) {
	var envs []card.Envelope
	var counts map[string]int
	err := s.Store.ReadTx(ctx, func(tx *db.Store) error {
		var err error
		if envs, err = tx.ListEnvelopes(ctx); err != nil {
			return err
		}
		counts, err = tx.CountCardsByEnvelope(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]EnvelopeItem, len(envs))
	for i, e := range envs {
		items[i] = EnvelopeItem{Envelope: e, CardCount: counts[e.ID]}
	}
	page, p := paginate(items, input.Limit, input.Offset)
	return &ListEnvelopesOutput{Items: page, Pagination: p}, nil
}

// SuggestNameInput contains parameters for the SuggestName operation.
type SuggestNameInput struct {
	Text string // required
}

// SuggestNameOutput is the name the namer would give Text, and the closest
// existing envelope name.
type SuggestNameOutput struct {
	Name    string               `json:"name"`
	Closest *envelope.Suggestion `json:"closest,omitempty"`
}

// SuggestName names a text the way ingestion would, considering existing
// envelope names for reuse.
func (s *Service) SuggestName(ctx context.Context, input SuggestNameInput) (*SuggestNameOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	envs, err := s.Store.ListEnvelopes(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(envs))
	for i, e := range envs {
		names[i] = e.Name
	}

	name, err := s.Namer.Name(ctx, text, names)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	out := &SuggestNameOutput{Name: name}

	closest, err := s.Namer.Suggest(ctx, text, names)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if closest.Name != "" {
		out.Closest = &closest
	}
	return out, nil
}
