package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

// ListCardsInput contains parameters for the ListCards operation.
type ListCardsInput struct {
	EnvelopeID string // optional
	Type       string // optional: task, reminder, idea
	Assignee   string // optional, case-insensitive
	Limit      int    // default: 20, max: 100
	Offset     int
}

// ListCardsOutput contains one page of cards in insertion order.
type ListCardsOutput struct {
	Items      []card.Card `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// ListCards returns cards, optionally restricted to one envelope, type or assignee.
func (s *Service) ListCards(ctx context.Context, input ListCardsInput) (*ListCardsOutput, error) {
	var typ card.Type
	if input.Type != "" {
		t, ok := card.ParseType(input.Type)
		if !ok {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown card type %q", input.Type))
		}
		typ = t
	}

	var cards []card.Card
	var err error
	if id := strings.TrimSpace(input.EnvelopeID); id != "" {
		if _, err := s.Store.GetEnvelope(ctx, id); err != nil {
			return nil, err
		}
		cards, err = s.Store.ListCardsByEnvelope(ctx, id)
	} else {
		cards, err = s.Store.ListCards(ctx)
	}
	if err != nil {
		return nil, err
	}

	assignee := card.Normalize(input.Assignee)
	filtered := cards[:0]
	for _, c := range cards {
		if typ != "" && c.Type != typ {
			continue
		}
		if assignee != "" && (c.Assignee == nil || card.Normalize(*c.Assignee) != assignee) {
			continue
		}
		filtered = append(filtered, c)
	}

	page, p := paginate(filtered, input.Limit, input.Offset)
	return &ListCardsOutput{Items: page, Pagination: p}, nil
}

// GetCardInput contains parameters for the GetCard operation.
type GetCardInput struct {
	ID string // required
}

// GetCardOutput is a card with its envelope.
type GetCardOutput struct {
	Card     *card.Card     `json:"card"`
	Envelope *card.Envelope `json:"envelope"`
}

// GetCard retrieves one card by ID.
func (s *Service) GetCard(ctx context.Context, input GetCardInput) (*GetCardOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	c, err := s.Store.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	env, err := s.Store.GetEnvelope(ctx, c.EnvelopeID)
	if err != nil {
		return nil, err
	}
	return &GetCardOutput{Card: c, Envelope: env}, nil
}
