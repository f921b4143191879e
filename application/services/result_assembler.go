package services

import (
	"fmt"
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/domain"
	"time"

	"github.com/google/uuid"
)

type resultAssembler struct {
	now   func() time.Time
	newID func() string
}

func NewResultAssembler(now func() time.Time) inbound.ResultAssemblerPort {
	if now == nil {
		now = time.Now
	}
	return &resultAssembler{
		now:   now,
		newID: uuid.NewString,
	}
}

// Assemble merges the three stage outputs by position. Any length or index
// mismatch means an earlier stage broke its contract.
func (r *resultAssembler) Assemble(story domain.ParsedStory, images []domain.GenerationResult,
	audio []domain.GenerationResult) (*domain.Story, error) {
	if len(images) != len(story.Scenes) || len(audio) != len(story.Scenes) {
		return nil, domain.AssemblyContract(fmt.Sprintf("stage length mismatch: %d scenes, %d images, %d audio",
			len(story.Scenes), len(images), len(audio)))
	}

	scenes := make([]domain.Scene, len(story.Scenes))
	for i, descriptor := range story.Scenes {
		if images[i].Index != i || audio[i].Index != i {
			return nil, domain.AssemblyContract(fmt.Sprintf("result order mismatch at position %d: image %d, audio %d",
				i, images[i].Index, audio[i].Index))
		}
		scenes[i] = domain.Scene{
			ID:               descriptor.ID,
			Title:            descriptor.Title,
			Text:             descriptor.Text,
			ImagePrompt:      descriptor.ImagePrompt,
			AudioText:        descriptor.AudioText,
			Image:            images[i].Artifact.Ref(),
			Audio:            audio[i].Artifact.Ref(),
			ImagePlaceholder: !images[i].Succeeded(),
			AudioPlaceholder: !audio[i].Succeeded(),
		}
	}

	imageSummary := domain.SummarizeResults(images)
	audioSummary := domain.SummarizeResults(audio)

	return &domain.Story{
		ID:     r.newID(),
		Title:  story.Title,
		Scenes: scenes,
		Metadata: domain.StoryMetadata{
			Images:        imageSummary,
			Audio:         audioSummary,
			ArtifactBytes: imageSummary.ArtifactBytes + audioSummary.ArtifactBytes,
			GeneratedAt:   r.now().UTC(),
		},
	}, nil
}
