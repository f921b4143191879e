package controllers

import (
	"fmt"
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"illustrated-story-api/infrastructure/gin_interface/dto"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type MediaController interface {
	GenerateImages(c *gin.Context)
	GenerateAudio(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type mediaController struct {
	logger         outbound.LoggerPort
	mediaStage     inbound.MediaStageGeneratorPort
	pipelineConfig *config.PipelineConfig
	now            func() time.Time
}

func NewMediaController(logger outbound.LoggerPort, mediaStage inbound.MediaStageGeneratorPort,
	pipelineConfig *config.PipelineConfig) MediaController {
	return &mediaController{
		logger:         logger,
		mediaStage:     mediaStage,
		pipelineConfig: pipelineConfig,
		now:            time.Now,
	}
}

func (m *mediaController) GenerateImages(c *gin.Context) {
	var request dto.GenerateImagesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, m.logger, domain.ClientError("imagePrompts must be an array of strings", err))
		return
	}

	cursor := batchCursor(request.CurrentIndex, request.BatchSize)
	stage, err := m.mediaStage.Generate(c.Request.Context(), inbound.GenerateMediaParams{
		Kind:     domain.ImageGenerationKind,
		Payloads: request.ImagePrompts,
		Options: map[string]string{
			domain.ProviderOption: request.Provider,
			domain.ModelOption:    request.Model,
			domain.StyleOption:    request.Style,
		},
		Cursor: cursor,
	})
	if err != nil {
		respondError(c, m.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateImagesResponse{
		Images:   stage.Refs(),
		Results:  dto.NewItemResults(request.ImagePrompts, stage.Results),
		Metadata: dto.NewStageMetadata(stage, rateLimitInfo(stage.Provider, m.pipelineConfig.ImagePacing), m.now()),
		Batch:    dto.NewBatchInfo(cursor != nil, stage.Progress),
	})
}

func (m *mediaController) GenerateAudio(c *gin.Context) {
	var request dto.GenerateAudioRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, m.logger, domain.ClientError("audioTexts must be an array of strings", err))
		return
	}

	options := map[string]string{
		domain.ProviderOption:     request.Provider,
		domain.LanguageOption:     request.Language,
		domain.VoiceOption:        request.Voice,
		domain.OutputFormatOption: request.OutputFormat,
	}
	if request.Speed != nil {
		options[domain.SpeedOption] = strconv.FormatFloat(*request.Speed, 'f', -1, 64)
	}

	stage, err := m.mediaStage.Generate(c.Request.Context(), inbound.GenerateMediaParams{
		Kind:     domain.SpeechGenerationKind,
		Payloads: request.AudioTexts,
		Options:  options,
	})
	if err != nil {
		respondError(c, m.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateAudioResponse{
		AudioUrls: stage.Refs(),
		Results:   dto.NewItemResults(request.AudioTexts, stage.Results),
		Metadata:  dto.NewStageMetadata(stage, rateLimitInfo(stage.Provider, m.pipelineConfig.AudioPacing), m.now()),
	})
}

func (m *mediaController) RegisterRoutes(g *gin.Engine) {
	api := g.Group("/api")
	api.POST("/generate-images", m.GenerateImages)
	api.POST("/generate-audio", m.GenerateAudio)
}

func batchCursor(currentIndex *int, batchSize *int) *domain.BatchCursor {
	if currentIndex == nil && batchSize == nil {
		return nil
	}
	cursor := &domain.BatchCursor{}
	if currentIndex != nil {
		cursor.StartIndex = *currentIndex
	}
	if batchSize != nil {
		cursor.BatchSize = *batchSize
	}
	return cursor
}

func rateLimitInfo(provider string, pacing time.Duration) string {
	return fmt.Sprintf("%s: ~%s between requests to stay under rate limits", provider, pacing)
}
