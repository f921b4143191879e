package inbound

import (
	"context"
	"illustrated-story-api/domain"
)

type GenerateStoryParams struct {
	Genre       string
	Description string
	Language    string
	Provider    string
}

type StoryTextGeneratorPort interface {
	Generate(ctx context.Context, params GenerateStoryParams) (domain.ParsedStory, error)
}
