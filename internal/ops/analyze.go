package ops

import (
	"context"
	"fmt"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/analyze"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

// AnalyzeOutput is the result of one batch analysis run.
type AnalyzeOutput = analyze.Result

// Analyze runs the batch analyzer once.
func (s *Service) Analyze(ctx context.Context) (*AnalyzeOutput, error) {
	return s.Analyzer.RunOnce(ctx)
}

// RecommendationsInput contains parameters for the Recommendations operation.
type RecommendationsInput struct {
	Limit int // default: 50, max: 500
	Kind  string
}

// RecommendationsOutput lists recommendations, newest first.
type RecommendationsOutput struct {
	Items []card.Recommendation `json:"items"`
	Limit int                   `json:"limit"`
}

// Recommendations returns the most recent recommendations, optionally of one kind.
func (s *Service) Recommendations(ctx context.Context, input RecommendationsInput) (*RecommendationsOutput, error) {
	limit := clampLimit(input.Limit, DefaultRecommendationLimit, MaxRecommendationLimit)

	var kind card.RecommendationKind
	if input.Kind != "" {
		k, ok := card.ParseRecommendationKind(input.Kind)
		if !ok {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown recommendation kind %q", input.Kind))
		}
		kind = k
	}

	// filter after fetching all when a kind is given, so limit counts matches
	fetch := limit
	if kind != "" {
		fetch = 0
	}
	recs, err := s.Analyzer.Recent(ctx, fetch)
	if err != nil {
		return nil, err
	}

	items := make([]card.Recommendation, 0, min(len(recs), limit))
	for _, r := range recs {
		if kind != "" && r.Kind != kind {
			continue
		}
		items = append(items, r)
		if len(items) == limit {
			break
		}
	}
	return &RecommendationsOutput{Items: items, Limit: limit}, nil
}

// ClearRecommendationsOutput reports how many recommendations were deleted.
type ClearRecommendationsOutput struct {
	Deleted int64 `json:"deleted"`
}

// ClearRecommendations deletes every recommendation.
func (s *Service) ClearRecommendations(ctx context.Context) (*ClearRecommendationsOutput, error) {
	n, err := s.Analyzer.Clear(ctx)
	if err != nil {
		return nil, err
	}
	return &ClearRecommendationsOutput{Deleted: n}, nil
}
