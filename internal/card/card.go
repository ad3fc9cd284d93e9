package card

import (
	"encoding/json"
	"time"
)

// Type is the classification of a note.
type Type string

const (
	TypeTask     Type = "Task"
	TypeReminder Type = "Reminder"
	TypeIdea     Type = "Idea"
)

// ParseType maps a case-insensitive name to a Type.
func ParseType(s string) (Type, bool) {
	switch Normalize(s) {
	case "task":
		return TypeTask, true
	case "reminder":
		return TypeReminder, true
	case "idea":
		return TypeIdea, true
	}
	return "", false
}

// DateLayout is the timezone-naive ISO-8601 layout used for DateParsed.
const DateLayout = "2006-01-02T15:04:05"

// Card is a stored, classified note. Cards are never mutated after creation.
type Card struct {
	// ID is a ULID assigned by the store
	ID string `json:"id"`

	// Description is the raw note text
	Description string `json:"description"`

	// DescriptionNorm is Normalize(Description); used for deduplication
	DescriptionNorm string `json:"-"`

	Type Type `json:"card_type"`

	// DateText is the matched date phrase, as it appeared in the note
	DateText *string `json:"date_text"`

	// DateParsed is the resolved point in time, without timezone
	DateParsed *time.Time `json:"-"`

	Assignee *string `json:"assignee"`

	// Keywords are ordered, de-duplicated lowercase tokens
	Keywords []string `json:"context_keywords"`

	EnvelopeID string `json:"envelope_id"`
	CreatedAt  int64  `json:"created_at"`
}

// DateParsedString renders DateParsed in DateLayout, or "" when absent.
func (c *Card) DateParsedString() string {
	if c.DateParsed == nil {
		return ""
	}
	return c.DateParsed.Format(DateLayout)
}

// MarshalJSON adds date_parsed in DateLayout.
func (c Card) MarshalJSON() ([]byte, error) {
	type alias Card
	var parsed *string
	if s := c.DateParsedString(); s != "" {
		parsed = &s
	}
	return json.Marshal(struct {
		alias
		DateParsed *string `json:"date_parsed"`
	}{alias(c), parsed})
}

// Envelope is a named thematic grouping of cards.
type Envelope struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	NameNorm    string  `json:"-"`
	Description *string `json:"description"`
	CreatedAt   int64   `json:"created_at"`
}

// RecommendationKind tags the payload shape of a Recommendation.
type RecommendationKind string

const (
	KindDuplicate         RecommendationKind = "duplicate"
	KindAssigneeConflict  RecommendationKind = "assignee_conflict"
	KindClusterSuggestion RecommendationKind = "cluster_suggestion"
	KindSuggestion        RecommendationKind = "suggestion"
)

// ParseRecommendationKind maps a case-insensitive name to a RecommendationKind.
func ParseRecommendationKind(s string) (RecommendationKind, bool) {
	switch k := RecommendationKind(Normalize(s)); k {
	case KindDuplicate, KindAssigneeConflict, KindClusterSuggestion, KindSuggestion:
		return k, true
	}
	return "", false
}

// Recommendation is an append-only analyzer finding.
type Recommendation struct {
	ID        string             `json:"id"`
	Kind      RecommendationKind `json:"kind"`
	Payload   json.RawMessage    `json:"payload"`
	CreatedAt int64              `json:"created_at"`
}
