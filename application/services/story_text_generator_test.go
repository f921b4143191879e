package services

import (
	"context"
	"errors"
	"illustrated-story-api/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryTextGenerator_Generate(t *testing.T) {
	provider := newFakeProvider(domain.TextGenerationKind)
	provider.text = storyText(5)
	recorder := &fakeRecorder{}
	generator := NewStoryTextGenerator(newTestLogger(), NewProviderRegistry(mockDefaults(), provider), recorder, time.Second)

	story, err := generator.Generate(context.Background(), storyParams("mystery", "a locked room", "en"))

	require.NoError(t, err)
	assert.Len(t, story.Scenes, 5)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Payload, `"a locked room"`)
	assert.Contains(t, calls[0].Payload, "expert mystery writer")
	assert.Contains(t, calls[0].Payload, "in English")
	assert.Equal(t, "en", calls[0].Options[domain.LanguageOption])
	assert.Equal(t, []domain.ResultStatus{domain.SuccessResultStatus}, recorder.generations)
}

func TestStoryTextGenerator_Errors(t *testing.T) {
	t.Run("missing genre", func(t *testing.T) {
		provider := newFakeProvider(domain.TextGenerationKind)
		generator := NewStoryTextGenerator(newTestLogger(), NewProviderRegistry(mockDefaults(), provider), nil, time.Second)

		_, err := generator.Generate(context.Background(), storyParams(" ", "a locked room", ""))

		assert.Equal(t, domain.ClientErrorCategory, domain.CategoryOf(err))
		assert.Empty(t, provider.Calls())
	})

	t.Run("provider failure", func(t *testing.T) {
		provider := newFakeProvider(domain.TextGenerationKind)
		provider.fail[0] = domain.NewProviderError("mock", "http_status", "quota exceeded")
		generator := NewStoryTextGenerator(newTestLogger(), NewProviderRegistry(mockDefaults(), provider), nil, time.Second)

		_, err := generator.Generate(context.Background(), storyParams("mystery", "a locked room", ""))

		assert.Equal(t, domain.StageFatalErrorCategory, domain.CategoryOf(err))
		var providerErr *domain.ProviderError
		assert.True(t, errors.As(err, &providerErr))
	})

	t.Run("unparseable output", func(t *testing.T) {
		provider := newFakeProvider(domain.TextGenerationKind)
		provider.text = "Once upon a time, without any JSON."
		generator := NewStoryTextGenerator(newTestLogger(), NewProviderRegistry(mockDefaults(), provider), nil, time.Second)

		_, err := generator.Generate(context.Background(), storyParams("mystery", "a locked room", ""))

		assert.Equal(t, domain.StageFatalErrorCategory, domain.CategoryOf(err))
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	})

	t.Run("no provider", func(t *testing.T) {
		generator := NewStoryTextGenerator(newTestLogger(), NewProviderRegistry(mockDefaults()), nil, time.Second)

		_, err := generator.Generate(context.Background(), storyParams("mystery", "a locked room", ""))

		assert.Equal(t, domain.InternalErrorCategory, domain.CategoryOf(err))
	})
}

func TestBuildStoryPrompt(t *testing.T) {
	prompt := BuildStoryPrompt("fantasy", "a dragon", "pt-BR")
	assert.Contains(t, prompt, "Generate exactly 5 scenes")
	assert.Contains(t, prompt, "in Portuguese")

	assert.Contains(t, BuildStoryPrompt("fantasy", "a dragon", "xx"), "in Spanish")
}
