package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeOptions(t *testing.T) {
	tests := []struct {
		name     string
		kind     GenerationKind
		options  map[string]string
		expected map[string]string
	}{
		{
			name:     "unknown keys dropped",
			kind:     ImageGenerationKind,
			options:  map[string]string{"style": "sketch", "seed": "42", "voice": "abc"},
			expected: map[string]string{"style": "sketch"},
		},
		{
			name:     "invalid model dropped",
			kind:     ImageGenerationKind,
			options:  map[string]string{"model": "midjourney", "style": "cinematic"},
			expected: map[string]string{"style": "cinematic"},
		},
		{
			name:     "language normalized",
			kind:     SpeechGenerationKind,
			options:  map[string]string{"language": " ES-mx ", "speed": "1.0"},
			expected: map[string]string{"language": "es", "speed": "1.0"},
		},
		{
			name:     "speed out of range dropped",
			kind:     SpeechGenerationKind,
			options:  map[string]string{"speed": "2.5", "outputFormat": "wav"},
			expected: map[string]string{},
		},
		{
			name:     "unsupported language dropped",
			kind:     TextGenerationKind,
			options:  map[string]string{"language": "jp", "provider": "gemini"},
			expected: map[string]string{"provider": "gemini"},
		},
		{
			name:     "nil options",
			kind:     TextGenerationKind,
			options:  nil,
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeOptions(tt.kind, tt.options))
		})
	}
}

func TestNewGenerationRequest_DoesNotAliasOptions(t *testing.T) {
	options := map[string]string{"style": "sketch"}
	req := NewGenerationRequest(ImageGenerationKind, "a cat", 1, options)
	options["style"] = "cinematic"

	assert.Equal(t, "sketch", req.Option(StyleOption, ""))
	assert.Equal(t, "fallback", req.Option(ModelOption, "fallback"))
}

func TestArtifact_Ref(t *testing.T) {
	inline := NewInlineArtifact([]byte("hi"), "audio/mpeg")
	assert.Equal(t, "data:audio/mpeg;base64,aGk=", inline.Ref())
	assert.False(t, inline.IsRemote())
	assert.Equal(t, 2, inline.Size())

	remote := NewRemoteArtifact("https://example.com/a.png")
	assert.Equal(t, "https://example.com/a.png", remote.Ref())
	assert.True(t, remote.IsRemote())

	var missing *Artifact
	assert.Empty(t, missing.Ref())
	assert.Zero(t, missing.Size())
}

func TestArtifact_WithMetaCopies(t *testing.T) {
	original := NewInlineArtifact([]byte("x"), "image/png").WithMeta("model", "a")
	updated := original.WithMeta("model", "b")

	assert.Equal(t, "a", original.Meta["model"])
	assert.Equal(t, "b", updated.Meta["model"])
}

func TestSummarizeResults(t *testing.T) {
	results := []GenerationResult{
		{Index: 0, Status: SuccessResultStatus, Artifact: NewInlineArtifact([]byte("abcd"), "image/png")},
		{Index: 1, Status: PlaceholderResultStatus, Artifact: NewRemoteArtifact("https://p/1")},
		{Index: 2, Status: FailedResultStatus},
	}

	summary := SummarizeResults(results)

	assert.Equal(t, StageSummary{
		Total:         3,
		Successful:    1,
		Placeholders:  1,
		Failed:        2,
		ArtifactBytes: 4 + len("https://p/1"),
	}, summary)
}

func TestParsedStory_Payloads(t *testing.T) {
	story := ParsedStory{Scenes: []SceneDescriptor{
		{ImagePrompt: "p1", AudioText: "a1"},
		{ImagePrompt: "p2", AudioText: "a2"},
	}}

	assert.Equal(t, []string{"p1", "p2"}, story.ImagePrompts())
	assert.Equal(t, []string{"a1", "a2"}, story.AudioTexts())
}

func TestPipelineState_CanTransition(t *testing.T) {
	assert.True(t, IdlePipelineState.CanTransition(GeneratingTextPipelineState))
	assert.True(t, GeneratingTextPipelineState.CanTransition(GeneratingImagesPipelineState))
	assert.True(t, GeneratingImagesPipelineState.CanTransition(GeneratingAudioPipelineState))
	assert.True(t, GeneratingAudioPipelineState.CanTransition(AssembledPipelineState))
	assert.True(t, GeneratingImagesPipelineState.CanTransition(AbortedPipelineState))

	assert.False(t, IdlePipelineState.CanTransition(GeneratingImagesPipelineState))
	assert.False(t, GeneratingAudioPipelineState.CanTransition(GeneratingTextPipelineState))
	assert.False(t, AssembledPipelineState.CanTransition(AbortedPipelineState))
	assert.False(t, AbortedPipelineState.CanTransition(GeneratingTextPipelineState))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, ClientErrorCategory, CategoryOf(ClientError("bad", nil)))
	assert.Equal(t, StageFatalErrorCategory, CategoryOf(fmt.Errorf("wrapped: %w", StageFatal("text", errors.New("x")))))
	assert.Equal(t, ProviderErrorCategory, CategoryOf(NewProviderError("p", "c", "m")))
	assert.Equal(t, InternalErrorCategory, CategoryOf(errors.New("plain")))
}

func TestPipelineError_Details(t *testing.T) {
	err := StageFatal("error generating story", errors.New("quota exceeded"))

	assert.Equal(t, "error generating story: quota exceeded", err.Error())
	assert.Equal(t, "quota exceeded", err.Details())
	assert.Empty(t, AssemblyContract("mismatch").Details())
}
