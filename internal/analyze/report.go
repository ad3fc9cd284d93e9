package analyze

// CardRef identifies a card inside a recommendation payload.
type CardRef struct {
	ID          string `json:"id"`
	EnvelopeID  string `json:"envelope_id,omitempty"`
	Description string `json:"description"`
}

// Duplicate is a group of cards with the same normalized description.
type Duplicate struct {
	Description string    `json:"description"`
	Cards       []CardRef `json:"cards"`
}

// Conflict is a group of cards for one assignee on one calendar day.
type Conflict struct {
	Assignee string    `json:"assignee"`
	Date     string    `json:"date"`
	Cards    []CardRef `json:"cards"`
}

// Cluster is a group of semantically close cards.
type Cluster struct {
	ClusterID      int       `json:"cluster_id"`
	Size           int       `json:"size"`
	Representative CardRef   `json:"representative"`
	Members        []CardRef `json:"members"`
}

// Suggestion types.
const (
	SuggestSchedule = "schedule_recommendation"
	SuggestAddDate  = "add_date"
)

// Suggestion is a next step for undated tasks.
type Suggestion struct {
	Type        string    `json:"type"`
	EnvelopeID  string    `json:"envelope_id,omitempty"`
	CardID      string    `json:"card_id,omitempty"`
	Reason      string    `json:"reason"`
	SampleTasks []CardRef `json:"sample_tasks,omitempty"`
}

// Summary counts what a run saw and produced.
type Summary struct {
	NumCards       int   `json:"num_cards"`
	NumEnvelopes   int   `json:"num_envelopes"`
	NumDuplicates  int   `json:"num_duplicates"`
	NumConflicts   int   `json:"num_conflicts"`
	NumClusters    int   `json:"num_clusters"`
	NumSuggestions int   `json:"num_suggestions"`
	RunAt          int64 `json:"run_at"`
}

// Result is everything one run produced.
type Result struct {
	Summary      Summary      `json:"summary"`
	Duplicates   []Duplicate  `json:"duplicates"`
	Conflicts    []Conflict   `json:"conflicts"`
	IdeaClusters []Cluster    `json:"idea_clusters"`
	NextSteps    []Suggestion `json:"next_steps"`
}
