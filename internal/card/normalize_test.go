package card

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple lowercase", "Call Sarah", "call sarah"},
		{"trim whitespace", "  hello  ", "hello"},
		{"collapse internal whitespace", "buy    milk", "buy milk"},
		{"tabs and newlines", "buy\t\n  milk", "buy milk"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWords(t *testing.T) {
	require.Equal(t, []string{"call", "sarah", "about", "the", "q3", "budget"}, Words("Call Sarah about the Q3 budget!"))
	require.Equal(t, []string{"don't", "forget"}, Words("Don't forget."))
	require.Empty(t, Words("  ... "))
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType(" reminder ")
	require.True(t, ok)
	require.Equal(t, TypeReminder, typ)

	_, ok = ParseType("chore")
	require.False(t, ok)
}

func TestCard_MarshalJSON(t *testing.T) {
	when := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	text := "next Monday"
	c := Card{ID: "01X", Description: "Call Sarah", Type: TypeTask, DateText: &text, DateParsed: &when, EnvelopeID: "01E"}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "2025-03-10T09:00:00", got["date_parsed"])
	require.Equal(t, "Task", got["card_type"])
	require.Nil(t, got["assignee"])
}
