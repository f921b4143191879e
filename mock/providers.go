package mock_generator

import (
	"context"
	"fmt"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"strconv"
	"time"
)

const ProviderName = "mock"

const storyFixture = "story.json"

// 1x1 transparent PNG.
var pixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

type mockProvider struct {
	kind        domain.GenerationKind
	logger      outbound.LoggerPort
	storyReader StoryReader
	delay       time.Duration
	failIndices map[int]bool
}

func newMockProvider(kind domain.GenerationKind, storyReader StoryReader, mockConfig *config.MockConfig,
	logger outbound.LoggerPort) outbound.ProviderPort {
	return &mockProvider{
		kind:        kind,
		logger:      logger,
		storyReader: storyReader,
		delay:       time.Duration(mockConfig.Delay) * time.Millisecond,
		failIndices: mockConfig.FailIndices,
	}
}

func (m *mockProvider) Name() string {
	return ProviderName
}

func (m *mockProvider) Kind() domain.GenerationKind {
	return m.kind
}

func (m *mockProvider) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Artifact, error) {
	if req.Payload == "" {
		return nil, domain.NewProviderError(ProviderName, "empty_payload", "payload is empty")
	}
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, domain.NewProviderError(ProviderName, "timeout", ctx.Err().Error())
		}
	}
	if m.kind != domain.TextGenerationKind && m.failIndices[req.Index] {
		return nil, domain.NewProviderError(ProviderName, "forced_failure",
			fmt.Sprintf("configured to fail on item %d", req.Index))
	}

	switch m.kind {
	case domain.TextGenerationKind:
		story, err := m.storyReader.Read(storyFixture)
		if err != nil {
			return nil, domain.NewProviderError(ProviderName, "missing_payload", err.Error())
		}
		text := "Here is your story:\n```json\n" + story + "\n```\n"
		return domain.NewInlineArtifact([]byte(text), "text/plain"), nil
	case domain.ImageGenerationKind:
		return domain.NewInlineArtifact(pixelPNG, "image/png").
			WithMeta("model", ProviderName).
			WithMeta("index", strconv.Itoa(req.Index)), nil
	default:
		audio := fmt.Sprintf("ID3mock:%d:%s", req.Index, req.Payload)
		return domain.NewInlineArtifact([]byte(audio), "audio/mpeg").
			WithMeta("voice", req.Option(domain.VoiceOption, config.FallbackVoiceID)), nil
	}
}
