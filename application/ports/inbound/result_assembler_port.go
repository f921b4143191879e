package inbound

import (
	"illustrated-story-api/domain"
)

type ResultAssemblerPort interface {
	Assemble(story domain.ParsedStory, images []domain.GenerationResult, audio []domain.GenerationResult) (*domain.Story, error)
}
