package inbound

import (
	"context"
	"illustrated-story-api/domain"
	"time"
)

type BatchParams struct {
	Kind     domain.GenerationKind
	Payloads []string
	Options  map[string]string
	Pacing   time.Duration
	// Cursor limits the run to one contiguous slice. Nil processes everything.
	Cursor *domain.BatchCursor
	// OnResult, when set, sees every result as soon as it is produced.
	OnResult func(domain.GenerationResult)
}

type BatchOutcome struct {
	Results  []domain.GenerationResult
	Progress domain.BatchProgress
}

type BatchSequencerPort interface {
	Stream(ctx context.Context, params BatchParams) (<-chan domain.GenerationResult, <-chan error)
	RunBatch(ctx context.Context, params BatchParams) (*BatchOutcome, error)
}
