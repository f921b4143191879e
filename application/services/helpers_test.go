package services

import (
	"context"
	"encoding/json"
	"fmt"
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"illustrated-story-api/infrastructure/adapters"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
)

func newTestLogger() outbound.LoggerPort {
	return adapters.NewZerologWrapper("disabled", io.Discard)
}

func newTestPool(t *testing.T) *ants.Pool {
	t.Helper()
	workerPool, err := ants.NewPool(16)
	require.NoError(t, err)
	t.Cleanup(workerPool.Release)
	return workerPool
}

func mockDefaults() *config.ProviderDefaults {
	return config.NewProviderDefaults(&config.PipelineConfig{MockProviders: true})
}

type fakeProvider struct {
	mu          sync.Mutex
	name        string
	kind        domain.GenerationKind
	text        string
	fail        map[int]error
	delay       time.Duration
	nilArtifact bool
	calls       []domain.GenerationRequest
}

func newFakeProvider(kind domain.GenerationKind) *fakeProvider {
	return &fakeProvider{name: "mock", kind: kind, fail: map[int]error{}}
}

func (f *fakeProvider) Name() string {
	return f.name
}

func (f *fakeProvider) Kind() domain.GenerationKind {
	return f.kind
}

func (f *fakeProvider) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Artifact, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, domain.NewProviderError(f.name, "timeout", ctx.Err().Error())
		}
	}
	if err, ok := f.fail[req.Index]; ok {
		return nil, err
	}
	if f.nilArtifact {
		return nil, nil
	}

	switch f.kind {
	case domain.TextGenerationKind:
		return domain.NewInlineArtifact([]byte(f.text), "text/plain"), nil
	case domain.ImageGenerationKind:
		return domain.NewInlineArtifact([]byte(fmt.Sprintf("image-%d", req.Index)), "image/png").
			WithMeta("model", "fake-image"), nil
	default:
		return domain.NewInlineArtifact([]byte("audio:"+req.Payload), "audio/mpeg"), nil
	}
}

func (f *fakeProvider) Calls() []domain.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.GenerationRequest(nil), f.calls...)
}

func (f *fakeProvider) Payloads() []string {
	var payloads []string
	for _, call := range f.Calls() {
		payloads = append(payloads, call.Payload)
	}
	return payloads
}

type fakeRecorder struct {
	mu          sync.Mutex
	generations []domain.ResultStatus
	stages      []domain.PipelineState
}

func (r *fakeRecorder) ObserveGeneration(provider string, kind domain.GenerationKind, status domain.ResultStatus,
	duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations = append(r.generations, status)
}

func (r *fakeRecorder) ObserveStage(state domain.PipelineState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, state)
}

type pauseCounter struct {
	mu        sync.Mutex
	durations []time.Duration
}

func (p *pauseCounter) Pause(ctx context.Context, d time.Duration) error {
	p.mu.Lock()
	p.durations = append(p.durations, d)
	p.mu.Unlock()
	return ctx.Err()
}

func (p *pauseCounter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.durations)
}

// storyText renders model output containing a story with n scenes, wrapped in
// prose and a code fence the way chat models usually answer.
func storyText(n int) string {
	scenes := make([]map[string]interface{}, n)
	for i := range scenes {
		scenes[i] = map[string]interface{}{
			"id":          i + 1,
			"title":       fmt.Sprintf("Scene %d", i+1),
			"text":        fmt.Sprintf("Text %d", i+1),
			"imagePrompt": fmt.Sprintf("image prompt %d", i+1),
			"audioText":   fmt.Sprintf("narration %d", i+1),
		}
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"title":  "The Locked Room",
		"scenes": scenes,
	})
	return "Sure! Here it is:\n```json\n" + string(payload) + "\n```"
}

func payloadList(n int) []string {
	payloads := make([]string, n)
	for i := range payloads {
		payloads[i] = fmt.Sprintf("payload %d", i)
	}
	return payloads
}

func storyParams(genre string, description string, language string) inbound.GenerateStoryParams {
	return inbound.GenerateStoryParams{Genre: genre, Description: description, Language: language}
}
