package inbound

import (
	"context"
	"illustrated-story-api/domain"
)

type GenerateMediaParams struct {
	Kind     domain.GenerationKind
	Payloads []string
	Options  map[string]string
	Cursor   *domain.BatchCursor
	// OnResult, when set, is called with every result as soon as it is produced.
	OnResult func(domain.GenerationResult)
}

type MediaStageResult struct {
	Provider string
	Model    string
	Results  []domain.GenerationResult
	Summary  domain.StageSummary
	Progress domain.BatchProgress
}

// Refs returns the artifact reference of every result in order.
func (r *MediaStageResult) Refs() []string {
	refs := make([]string, 0, len(r.Results))
	for _, result := range r.Results {
		refs = append(refs, result.Artifact.Ref())
	}
	return refs
}

type MediaStageGeneratorPort interface {
	Generate(ctx context.Context, params GenerateMediaParams) (*MediaStageResult, error)
}
