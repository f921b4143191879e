package services

import (
	"context"
	"fmt"
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/domain"

	"github.com/google/uuid"
)

// stateTracker enforces the forward-only pipeline state machine for a single
// request and reports every transition.
type stateTracker struct {
	state    domain.PipelineState
	recorder outbound.GenerationRecorderPort
	observer func(domain.PipelineEvent)
}

func (t *stateTracker) advance(next domain.PipelineState) error {
	if !t.state.CanTransition(next) {
		return domain.Internal(fmt.Sprintf("illegal pipeline transition %s -> %s", t.state, next), nil)
	}
	t.state = next
	if t.recorder != nil {
		t.recorder.ObserveStage(next)
	}
	t.emit(domain.PipelineEvent{Type: domain.StagePipelineEvent, State: next})
	return nil
}

func (t *stateTracker) emit(event domain.PipelineEvent) {
	if t.observer != nil {
		t.observer(event)
	}
}

type storyPipelineOrchestrator struct {
	logger        outbound.LoggerPort
	workerPool    outbound.TaskDispatcher
	recorder      outbound.GenerationRecorderPort
	textGenerator inbound.StoryTextGeneratorPort
	mediaStage    inbound.MediaStageGeneratorPort
	assembler     inbound.ResultAssemblerPort
}

func NewStoryPipelineOrchestrator(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	recorder outbound.GenerationRecorderPort, textGenerator inbound.StoryTextGeneratorPort,
	mediaStage inbound.MediaStageGeneratorPort, assembler inbound.ResultAssemblerPort) inbound.StoryPipelineOrchestratorPort {
	return &storyPipelineOrchestrator{
		logger:        logger,
		workerPool:    workerPool,
		recorder:      recorder,
		textGenerator: textGenerator,
		mediaStage:    mediaStage,
		assembler:     assembler,
	}
}

func (s *storyPipelineOrchestrator) Run(ctx context.Context, params inbound.StartPipelineParams,
	observer func(domain.PipelineEvent)) (*domain.Story, error) {
	storyID := params.StoryID
	if storyID == "" {
		storyID = uuid.NewString()
	}
	ctx = WithStoryID(ctx, storyID)
	logger := s.logger.With(map[string]interface{}{"story_id": storyID})

	tracker := &stateTracker{state: domain.IdlePipelineState, recorder: s.recorder, observer: observer}
	abort := func(err error) (*domain.Story, error) {
		if advanceErr := tracker.advance(domain.AbortedPipelineState); advanceErr != nil {
			logger.Error(advanceErr, "Failed to abort pipeline")
		}
		logger.ErrorWithFields(err, "Pipeline aborted", map[string]interface{}{
			"category": domain.CategoryOf(err),
		})
		return nil, err
	}

	if err := tracker.advance(domain.GeneratingTextPipelineState); err != nil {
		return abort(err)
	}
	story, err := s.textGenerator.Generate(ctx, inbound.GenerateStoryParams{
		Genre:       params.Genre,
		Description: params.Description,
		Language:    params.Language,
		Provider:    params.TextProvider,
	})
	if err != nil {
		return abort(err)
	}

	if err := tracker.advance(domain.GeneratingImagesPipelineState); err != nil {
		return abort(err)
	}
	images, err := s.mediaStage.Generate(ctx, inbound.GenerateMediaParams{
		Kind:     domain.ImageGenerationKind,
		Payloads: story.ImagePrompts(),
		Options:  params.ImageOptions,
		OnResult: resultEmitter(tracker, domain.ImagePipelineEvent),
	})
	if err != nil {
		return abort(err)
	}

	if err := tracker.advance(domain.GeneratingAudioPipelineState); err != nil {
		return abort(err)
	}
	audio, err := s.mediaStage.Generate(ctx, inbound.GenerateMediaParams{
		Kind:     domain.SpeechGenerationKind,
		Payloads: story.AudioTexts(),
		Options:  audioOptions(params),
		OnResult: resultEmitter(tracker, domain.AudioPipelineEvent),
	})
	if err != nil {
		return abort(err)
	}

	assembled, err := s.assembler.Assemble(story, images.Results, audio.Results)
	if err != nil {
		return abort(err)
	}
	assembled.ID = storyID

	if err := tracker.advance(domain.AssembledPipelineState); err != nil {
		return abort(err)
	}

	logger.InfoWithFields("Story assembled", map[string]interface{}{
		"title":              assembled.Title,
		"image_placeholders": assembled.Metadata.Images.Placeholders,
		"audio_placeholders": assembled.Metadata.Audio.Placeholders,
	})
	return assembled, nil
}

func (s *storyPipelineOrchestrator) StartPipeline(ctx context.Context, params inbound.StartPipelineParams) (<-chan domain.PipelineEvent, <-chan error) {
	out := make(chan domain.PipelineEvent)
	errCh := make(chan error, 1)

	newCtx, cancel := context.WithCancel(ctx)

	err := s.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)
		defer cancel()

		send := func(event domain.PipelineEvent) {
			select {
			case out <- event:
			case <-newCtx.Done():
			}
		}

		story, err := s.Run(newCtx, params, send)
		if err != nil {
			errCh <- err
			return
		}
		send(domain.PipelineEvent{Type: domain.StoryPipelineEvent, State: domain.AssembledPipelineState, Story: story})
	})
	if err != nil {
		cancel()
		errCh <- err
		close(out)
		close(errCh)
	}

	return out, errCh
}

func resultEmitter(tracker *stateTracker, eventType domain.PipelineEventType) func(domain.GenerationResult) {
	return func(result domain.GenerationResult) {
		tracker.emit(domain.PipelineEvent{
			Type:   eventType,
			Index:  result.Index,
			Status: result.Status,
			Ref:    result.Artifact.Ref(),
		})
	}
}

// audioOptions defaults the narration language to the story language.
func audioOptions(params inbound.StartPipelineParams) map[string]string {
	options := make(map[string]string, len(params.AudioOptions)+1)
	for k, v := range params.AudioOptions {
		options[k] = v
	}
	if _, ok := options[domain.LanguageOption]; !ok && params.Language != "" {
		options[domain.LanguageOption] = params.Language
	}
	return options
}
