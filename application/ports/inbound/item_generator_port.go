package inbound

import (
	"context"
	"illustrated-story-api/domain"
)

// ItemGeneratorPort turns one request into exactly one result. Provider
// failures are absorbed into the result and never returned.
type ItemGeneratorPort interface {
	Run(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult
}
