package outbound

import (
	"context"
	"illustrated-story-api/domain"
)

type SaveArtifactParams struct {
	StoryID  string
	Kind     domain.GenerationKind
	Index    int
	Artifact *domain.Artifact
}

// ArtifactStorePort uploads an inline artifact and returns its public URL.
type ArtifactStorePort interface {
	Save(ctx context.Context, params SaveArtifactParams) (string, error)
}
