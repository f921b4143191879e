package services

import (
	"context"
	"fmt"
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"strings"
	"time"
)

var languageNames = map[string]string{
	"es": "Spanish",
	"en": "English",
	"pt": "Portuguese",
	"fr": "French",
	"de": "German",
	"it": "Italian",
}

const storyPromptTemplate = `You are an expert %[1]s writer. Write a story based on: "%[2]s".

IMPORTANT: reply ONLY with valid JSON in exactly this format:
{
  "title": "Main title of the story",
  "scenes": [
    {
      "id": 1,
      "title": "Scene title",
      "text": "Scene narration (at most 150 words)",
      "imagePrompt": "Detailed description in English for image generation (at most 100 words, very visual and specific)",
      "audioText": "Text for the audio narration, more dramatic and expressive"
    }
  ]
}

Generate exactly %[3]d scenes that form a complete story with:
- Introduction
- Development of the conflict
- Climax
- Resolution
- Epilogue

Write title, text and audioText in %[4]s.
Image descriptions must be very specific, visual and in English.
The audio text must be more dramatic and expressive for narration.`

type storyTextGenerator struct {
	logger   outbound.LoggerPort
	registry *ProviderRegistry
	recorder outbound.GenerationRecorderPort
	timeout  time.Duration
}

func NewStoryTextGenerator(logger outbound.LoggerPort, registry *ProviderRegistry, recorder outbound.GenerationRecorderPort,
	timeout time.Duration) inbound.StoryTextGeneratorPort {
	return &storyTextGenerator{
		logger:   logger,
		registry: registry,
		recorder: recorder,
		timeout:  timeout,
	}
}

func (s *storyTextGenerator) Generate(ctx context.Context, params inbound.GenerateStoryParams) (domain.ParsedStory, error) {
	genre := strings.TrimSpace(params.Genre)
	description := strings.TrimSpace(params.Description)
	if genre == "" || description == "" {
		return domain.ParsedStory{}, domain.ClientError("genre and description are required", nil)
	}

	req := domain.NewGenerationRequest(domain.TextGenerationKind, BuildStoryPrompt(genre, description, params.Language), 0,
		map[string]string{
			domain.ProviderOption: params.Provider,
			domain.LanguageOption: params.Language,
		})

	provider, err := s.registry.Resolve(domain.TextGenerationKind, req.Option(domain.ProviderOption, ""))
	if err != nil {
		return domain.ParsedStory{}, err
	}

	textCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		textCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	artifact, err := provider.Generate(textCtx, req)
	if err != nil {
		s.observe(provider.Name(), domain.FailedResultStatus, time.Since(start))
		s.logger.ErrorWithFields(err, "Text provider failed", map[string]interface{}{
			"provider": provider.Name(),
			"genre":    genre,
		})
		return domain.ParsedStory{}, domain.StageFatal("error generating story", err)
	}
	s.observe(provider.Name(), domain.SuccessResultStatus, time.Since(start))

	story, err := ParseStory(string(artifact.Data))
	if err != nil {
		s.logger.WarnWithFields("Model output could not be parsed as a story", map[string]interface{}{
			"provider": provider.Name(),
			"error":    err.Error(),
		})
		return domain.ParsedStory{}, domain.StageFatal("error generating story", err)
	}

	s.logger.InfoWithFields("Story text generated", map[string]interface{}{
		"provider": provider.Name(),
		"title":    story.Title,
	})
	return story, nil
}

func (s *storyTextGenerator) observe(provider string, status domain.ResultStatus, duration time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveGeneration(provider, domain.TextGenerationKind, status, duration)
	}
}

// BuildStoryPrompt renders the instruction sent to the text provider.
func BuildStoryPrompt(genre string, description string, language string) string {
	name, ok := languageNames[domain.NormalizeLanguage(language)]
	if !ok {
		name = languageNames[config.FallbackLanguage]
	}
	return fmt.Sprintf(storyPromptTemplate, genre, description, domain.SceneCount, name)
}
