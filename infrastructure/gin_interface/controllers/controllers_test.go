package controllers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/application/services"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"illustrated-story-api/infrastructure/adapters"
	"illustrated-story-api/infrastructure/gin_interface/dto"
	mockgenerator "illustrated-story-api/mock"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTextProvider struct{}

func (failingTextProvider) Name() string {
	return mockgenerator.ProviderName
}

func (failingTextProvider) Kind() domain.GenerationKind {
	return domain.TextGenerationKind
}

func (failingTextProvider) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Artifact, error) {
	return nil, domain.NewProviderError(mockgenerator.ProviderName, "http_status", "quota exceeded")
}

func newTestRouter(t *testing.T, mockConfig *config.MockConfig, overrides ...outbound.ProviderPort) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := adapters.NewZerologWrapper("disabled", io.Discard)
	workerPool, err := ants.NewPool(16)
	require.NoError(t, err)
	t.Cleanup(workerPool.Release)

	pipelineConfig := &config.PipelineConfig{MockProviders: true}
	defaults := config.NewProviderDefaults(pipelineConfig)
	registry := services.NewProviderRegistry(defaults, mockgenerator.Init(mockConfig, logger)...)
	for _, provider := range overrides {
		registry.Register(provider)
	}

	itemGenerator := services.NewItemGenerator(logger, registry, nil, time.Second)
	sequencer := services.NewBatchSequencer(logger, workerPool, itemGenerator, 0, nil)
	textGenerator := services.NewStoryTextGenerator(logger, registry, nil, time.Second)
	mediaStage := services.NewMediaStageGenerator(logger, sequencer, registry, defaults, pipelineConfig)
	orchestrator := services.NewStoryPipelineOrchestrator(logger, workerPool, nil, textGenerator, mediaStage,
		services.NewResultAssembler(time.Now))

	router := gin.New()
	RegisterFallbackHandlers(router)
	NewHealthController(registry).RegisterRoutes(router)
	NewStoryController(logger, textGenerator, orchestrator).RegisterRoutes(router)
	NewMediaController(logger, mediaStage, pipelineConfig).RegisterRoutes(router)
	return router
}

func perform(router *gin.Engine, method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestMediaController_GenerateImages_PartialSuccess(t *testing.T) {
	router := newTestRouter(t, &config.MockConfig{FailIndices: map[int]bool{1: true}})

	w := perform(router, http.MethodPost, "/api/generate-images", `{"imagePrompts":["a lighthouse","a harbor","a storm"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	response := decode[dto.GenerateImagesResponse](t, w)
	require.Len(t, response.Images, 3)
	require.Len(t, response.Results, 3)

	failed := response.Results[1]
	assert.Equal(t, 2, failed.SceneIndex)
	assert.Equal(t, "a harbor", failed.Prompt)
	assert.False(t, failed.Success)
	assert.Equal(t, "placeholder", failed.Status)
	assert.True(t, strings.HasPrefix(failed.Placeholder, "https://picsum.photos/1024/768"))
	assert.Equal(t, failed.Placeholder, response.Images[1])
	assert.Contains(t, failed.Error, "forced_failure")

	assert.True(t, response.Results[0].Success)
	assert.True(t, strings.HasPrefix(response.Images[0], "data:image/png;base64,"))
	assert.Equal(t, "mock", response.Metadata.Provider)
	assert.Equal(t, 3, response.Metadata.Total)
	assert.Equal(t, 2, response.Metadata.Successful)
	assert.Equal(t, 1, response.Metadata.Placeholders)
	assert.Nil(t, response.Batch)
}

func TestMediaController_GenerateImages_Batch(t *testing.T) {
	router := newTestRouter(t, nil)

	w := perform(router, http.MethodPost, "/api/generate-images",
		`{"imagePrompts":["a","b","c"],"currentIndex":0,"batchSize":2}`)

	require.Equal(t, http.StatusOK, w.Code)
	response := decode[dto.GenerateImagesResponse](t, w)
	assert.Len(t, response.Images, 2)
	require.NotNil(t, response.Batch)
	assert.Equal(t, dto.BatchInfo{CurrentIndex: 0, BatchSize: 2, NextIndex: 2, Total: 3, Complete: false}, *response.Batch)
}

func TestMediaController_GenerateImages_BadRequests(t *testing.T) {
	router := newTestRouter(t, nil)

	for name, body := range map[string]string{
		"not an array":   `{"imagePrompts":"a lighthouse"}`,
		"missing field":  `{"style":"cinematic"}`,
		"invalid json":   `{"imagePrompts":`,
		"cursor too far": `{"imagePrompts":["a"],"currentIndex":5}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := perform(router, http.MethodPost, "/api/generate-images", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "client_error", decode[dto.ErrorResponse](t, w).Category)
		})
	}
}

func TestMediaController_GenerateImages_EmptyList(t *testing.T) {
	router := newTestRouter(t, nil)

	w := perform(router, http.MethodPost, "/api/generate-images", `{"imagePrompts":[]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.GenerateImagesResponse](t, w).Images)
}

func TestMediaController_GenerateAudio(t *testing.T) {
	router := newTestRouter(t, &config.MockConfig{FailIndices: map[int]bool{0: true}})

	w := perform(router, http.MethodPost, "/api/generate-audio",
		`{"audioTexts":["Once upon a time","The end"],"language":"es","speed":1.1}`)

	require.Equal(t, http.StatusOK, w.Code)
	response := decode[dto.GenerateAudioResponse](t, w)
	require.Len(t, response.AudioUrls, 2)
	assert.Equal(t, services.SilentAudioRef, response.AudioUrls[0])
	assert.True(t, strings.HasPrefix(response.AudioUrls[1], "data:audio/mpeg;base64,"))
	assert.Equal(t, config.FallbackSpeechModel, response.Metadata.Model)
	assert.Contains(t, response.Metadata.RateLimitInfo, "mock")
}

func TestMediaController_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, nil)

	w := perform(router, http.MethodGet, "/api/generate-images", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, dto.ErrorResponse{Error: "Method not allowed", Category: "client_error"}, decode[dto.ErrorResponse](t, w))
}

func TestStoryController_GenerateStory(t *testing.T) {
	router := newTestRouter(t, nil)

	w := perform(router, http.MethodPost, "/api/generate-story", `{"genre":"adventure","description":"a lighthouse keeper"}`)

	require.Equal(t, http.StatusOK, w.Code)
	story := decode[domain.ParsedStory](t, w)
	assert.Equal(t, "The Lighthouse Keeper's Promise", story.Title)
	assert.Len(t, story.Scenes, domain.SceneCount)
}

func TestStoryController_GenerateStory_Errors(t *testing.T) {
	router := newTestRouter(t, nil, failingTextProvider{})

	w := perform(router, http.MethodPost, "/api/generate-story", `{"genre":"adventure"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPost, "/api/generate-story", `{"genre":"adventure","description":"a lighthouse keeper"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	response := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "error generating story", response.Error)
	assert.Equal(t, "stage_fatal", response.Category)
	assert.Contains(t, response.Details, "quota exceeded")
}

func TestStoryController_CreateStory(t *testing.T) {
	router := newTestRouter(t, &config.MockConfig{FailIndices: map[int]bool{2: true}})

	w := perform(router, http.MethodPost, "/api/stories", `{"genre":"mystery","description":"a locked room","language":"en"}`)

	require.Equal(t, http.StatusOK, w.Code)
	story := decode[domain.Story](t, w)
	assert.NotEmpty(t, story.ID)
	require.Len(t, story.Scenes, domain.SceneCount)
	for i, scene := range story.Scenes {
		assert.Equal(t, i == 2, scene.ImagePlaceholder, "scene %d", i)
		assert.Equal(t, i == 2, scene.AudioPlaceholder, "scene %d", i)
	}
	assert.Equal(t, services.SilentAudioRef, story.Scenes[2].Audio)
	assert.Equal(t, 1, story.Metadata.Images.Placeholders)
}

func readEvents(t *testing.T, body io.Reader) []string {
	t.Helper()
	var events []string
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event:"); ok {
			events = append(events, name)
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestStoryController_StreamStory(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t, nil))
	defer server.Close()

	res, err := http.Post(server.URL+"/api/stories/stream", "application/json",
		bytes.NewBufferString(`{"genre":"mystery","description":"a locked room"}`))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Content-Type"), "text/event-stream"))

	events := readEvents(t, res.Body)
	require.NotEmpty(t, events)
	assert.Equal(t, "stage", events[0])
	assert.Equal(t, "story", events[len(events)-1])
	assert.Contains(t, events, "image")
	assert.Contains(t, events, "audio")
}

func TestStoryController_StreamStory_BadRequest(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t, nil))
	defer server.Close()

	res, err := http.Post(server.URL+"/api/stories/stream", "application/json", bytes.NewBufferString(`{"genre":"mystery"}`))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, []string{"error"}, readEvents(t, res.Body))
}

func TestHealthController(t *testing.T) {
	router := newTestRouter(t, nil)

	w := perform(router, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, map[string]interface{}{
		"text":   []interface{}{"mock"},
		"image":  []interface{}{"mock"},
		"speech": []interface{}{"mock"},
	}, body["providers"])
}
