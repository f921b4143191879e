package mock_generator

import (
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
)

// Init returns offline providers for every generation kind. They are
// deterministic and only fail on the configured indices.
func Init(mockConfig *config.MockConfig, logger outbound.LoggerPort) []outbound.ProviderPort {
	if mockConfig == nil {
		mockConfig = &config.MockConfig{}
	}
	storyReader := NewStoryReader(logger, nil)
	return []outbound.ProviderPort{
		newMockProvider(domain.TextGenerationKind, storyReader, mockConfig, logger),
		newMockProvider(domain.ImageGenerationKind, storyReader, mockConfig, logger),
		newMockProvider(domain.SpeechGenerationKind, storyReader, mockConfig, logger),
	}
}
