package outbound

import (
	"context"
	"illustrated-story-api/domain"
)

// ProviderPort is one external generation backend. Generate issues exactly one
// outbound call and reports failures as *domain.ProviderError.
type ProviderPort interface {
	Name() string
	Kind() domain.GenerationKind
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Artifact, error)
}
