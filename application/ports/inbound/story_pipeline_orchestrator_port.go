package inbound

import (
	"context"
	"illustrated-story-api/domain"
)

type StartPipelineParams struct {
	StoryID      string
	Genre        string
	Description  string
	Language     string
	TextProvider string
	ImageOptions map[string]string
	AudioOptions map[string]string
}

type StoryPipelineOrchestratorPort interface {
	// Run generates the whole story. observer may be nil.
	Run(ctx context.Context, params StartPipelineParams, observer func(domain.PipelineEvent)) (*domain.Story, error)
	// StartPipeline runs the pipeline on the worker pool and streams its events.
	// The last event on success carries the assembled story.
	StartPipeline(ctx context.Context, params StartPipelineParams) (<-chan domain.PipelineEvent, <-chan error)
}
