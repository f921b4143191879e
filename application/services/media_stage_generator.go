package services

import (
	"context"
	"fmt"
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"time"
)

type mediaStageGenerator struct {
	logger         outbound.LoggerPort
	batchSequencer inbound.BatchSequencerPort
	registry       *ProviderRegistry
	defaults       *config.ProviderDefaults
	pipelineConfig *config.PipelineConfig
}

func NewMediaStageGenerator(logger outbound.LoggerPort, batchSequencer inbound.BatchSequencerPort, registry *ProviderRegistry,
	defaults *config.ProviderDefaults, pipelineConfig *config.PipelineConfig) inbound.MediaStageGeneratorPort {
	return &mediaStageGenerator{
		logger:         logger,
		batchSequencer: batchSequencer,
		registry:       registry,
		defaults:       defaults,
		pipelineConfig: pipelineConfig,
	}
}

func (m *mediaStageGenerator) Generate(ctx context.Context, params inbound.GenerateMediaParams) (*inbound.MediaStageResult, error) {
	if params.Kind != domain.ImageGenerationKind && params.Kind != domain.SpeechGenerationKind {
		return nil, domain.Internal(fmt.Sprintf("%s is not a media kind", params.Kind), nil)
	}
	if params.Payloads == nil {
		return nil, domain.ClientError("a list of prompts is required", nil)
	}

	options := domain.SanitizeOptions(params.Kind, params.Options)
	// Without a provider every item falls back to its placeholder.
	providerName := "none"
	if provider, err := m.registry.Resolve(params.Kind, options[domain.ProviderOption]); err == nil {
		providerName = provider.Name()
	} else {
		m.logger.WarnWithFields("No provider available, items will use placeholders", map[string]interface{}{
			"kind":  params.Kind,
			"error": err.Error(),
		})
	}

	outcome, err := m.batchSequencer.RunBatch(ctx, inbound.BatchParams{
		Kind:     params.Kind,
		Payloads: params.Payloads,
		Options:  options,
		Pacing:   m.pacing(params.Kind),
		Cursor:   params.Cursor,
		OnResult: params.OnResult,
	})
	if err != nil {
		return nil, err
	}

	summary := domain.SummarizeResults(outcome.Results)
	m.logger.InfoWithFields("Media stage finished", map[string]interface{}{
		"kind":         params.Kind,
		"provider":     providerName,
		"total":        summary.Total,
		"successful":   summary.Successful,
		"placeholders": summary.Placeholders,
		"complete":     outcome.Progress.Complete,
	})

	return &inbound.MediaStageResult{
		Provider: providerName,
		Model:    m.model(params.Kind, options),
		Results:  outcome.Results,
		Summary:  summary,
		Progress: outcome.Progress,
	}, nil
}

func (m *mediaStageGenerator) pacing(kind domain.GenerationKind) time.Duration {
	if kind == domain.ImageGenerationKind {
		return m.pipelineConfig.ImagePacing
	}
	return m.pipelineConfig.AudioPacing
}

func (m *mediaStageGenerator) model(kind domain.GenerationKind, options map[string]string) string {
	if model, ok := options[domain.ModelOption]; ok {
		return model
	}
	if kind == domain.ImageGenerationKind {
		return m.defaults.ImageModel(options[domain.StyleOption])
	}
	return m.defaults.SpeechModel(options[domain.LanguageOption])
}
