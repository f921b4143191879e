package config

import (
	"illustrated-story-api/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPipelineConfig_Defaults(t *testing.T) {
	pipelineConfig, err := GetPipelineConfig()

	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, pipelineConfig.ImagePacing)
	assert.Equal(t, 1500*time.Millisecond, pipelineConfig.AudioPacing)
	assert.Equal(t, 45*time.Second, pipelineConfig.ItemTimeout)
	assert.Equal(t, 120, pipelineConfig.WorkerPoolSize)
	assert.Zero(t, pipelineConfig.MaxBatchSize)
	assert.False(t, pipelineConfig.MockProviders)
}

func TestGetPipelineConfig_Overrides(t *testing.T) {
	t.Setenv("IMAGE_PACING_MS", "0")
	t.Setenv("MAX_BATCH_SIZE", "3")
	t.Setenv("MOCK_PROVIDERS", "true")
	t.Setenv("IMAGE_PROVIDER", "dalle")

	pipelineConfig, err := GetPipelineConfig()

	require.NoError(t, err)
	assert.Zero(t, pipelineConfig.ImagePacing)
	assert.Equal(t, 3, pipelineConfig.MaxBatchSize)
	assert.True(t, pipelineConfig.MockProviders)
	assert.Equal(t, "dalle", pipelineConfig.DefaultProviders[domain.ImageGenerationKind])
}

func TestGetPipelineConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"IMAGE_PACING_MS":  "-1",
		"MAX_BATCH_SIZE":   "-2",
		"WORKER_POOL_SIZE": "0",
		"MOCK_PROVIDERS":   "maybe",
		"ITEM_TIMEOUT_MS":  "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := GetPipelineConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewProviderDefaults(t *testing.T) {
	defaults := NewProviderDefaults(nil)

	assert.Equal(t, "gemini", defaults.Provider(domain.TextGenerationKind))
	assert.Equal(t, "replicate", defaults.Provider(domain.ImageGenerationKind))
	assert.Equal(t, "elevenlabs", defaults.Provider(domain.SpeechGenerationKind))
	assert.Equal(t, "21m00Tcm4TlvDq8ikWAM", defaults.Voice("en-GB"))
	assert.Equal(t, FallbackVoiceID, defaults.Voice("ja"))
	assert.Equal(t, "sdxl", defaults.ImageModel("illustration"))
	assert.Equal(t, FallbackImageModel, defaults.ImageModel("unknown"))
	assert.Equal(t, "eleven_monolingual_v1", defaults.SpeechModel("en"))
	assert.Equal(t, FallbackSpeechModel, defaults.SpeechModel("es"))
}

func TestNewProviderDefaults_MockWithOverride(t *testing.T) {
	defaults := NewProviderDefaults(&PipelineConfig{
		MockProviders: true,
		DefaultProviders: map[domain.GenerationKind]string{
			domain.TextGenerationKind:  "gemini",
			domain.ImageGenerationKind: "",
		},
	})

	assert.Equal(t, "gemini", defaults.Provider(domain.TextGenerationKind))
	assert.Equal(t, "mock", defaults.Provider(domain.ImageGenerationKind))
	assert.Equal(t, "mock", defaults.Provider(domain.SpeechGenerationKind))
}

func TestParseIndexList(t *testing.T) {
	indices, err := ParseIndexList(" 0, 2 ,,4")
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{0: true, 2: true, 4: true}, indices)

	indices, err = ParseIndexList("")
	require.NoError(t, err)
	assert.Empty(t, indices)

	_, err = ParseIndexList("1,-1")
	assert.Error(t, err)
	_, err = ParseIndexList("one")
	assert.Error(t, err)
}

func TestProviderConfigs(t *testing.T) {
	_, err := GetReplicateConfig()
	assert.Error(t, err)

	t.Setenv("REPLICATE_API_TOKEN", "token")
	replicateConfig, err := GetReplicateConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://api.replicate.com/v1", replicateConfig.ApiUrl)

	t.Setenv("ELEVEN_LABS_API_KEY", "key")
	t.Setenv("ELEVEN_LABS_STABILITY", "0.3")
	elevenLabsConfig, err := GetElevenLabsConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.3, elevenLabsConfig.Stability)
	assert.True(t, elevenLabsConfig.SpeakerBoost)

	t.Setenv("ELEVEN_LABS_STYLE", "loud")
	_, err = GetElevenLabsConfig()
	assert.Error(t, err)
}
