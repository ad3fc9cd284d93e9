package ops

import (
	"context"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/ingest"
)

// ProcessInput contains parameters for the Process operation.
type ProcessInput struct {
	Note string // required
}

// ProcessOutput is the stored (or already existing) card and its envelope.
type ProcessOutput = ingest.Outcome

// Process ingests one note.
func (s *Service) Process(ctx context.Context, input ProcessInput) (*ProcessOutput, error) {
	return s.Pipeline.Process(ctx, input.Note)
}
