package controllers

import (
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/domain"
	"illustrated-story-api/infrastructure/gin_interface/dto"
	"illustrated-story-api/middleware"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StoryController interface {
	GenerateStory(c *gin.Context)
	CreateStory(c *gin.Context)
	StreamStory(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type storyController struct {
	logger               outbound.LoggerPort
	textGenerator        inbound.StoryTextGeneratorPort
	pipelineOrchestrator inbound.StoryPipelineOrchestratorPort
}

func NewStoryController(
	logger outbound.LoggerPort,
	textGenerator inbound.StoryTextGeneratorPort,
	pipelineOrchestrator inbound.StoryPipelineOrchestratorPort,
) StoryController {
	return &storyController{
		logger:               logger,
		textGenerator:        textGenerator,
		pipelineOrchestrator: pipelineOrchestrator,
	}
}

func (s *storyController) GenerateStory(c *gin.Context) {
	var request dto.GenerateStoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, s.logger, domain.ClientError("genre and description are required", err))
		return
	}

	story, err := s.textGenerator.Generate(c.Request.Context(), inbound.GenerateStoryParams{
		Genre:       request.Genre,
		Description: request.Description,
		Language:    request.Language,
		Provider:    request.Provider,
	})
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	c.JSON(http.StatusOK, story)
}

func (s *storyController) CreateStory(c *gin.Context) {
	var request dto.CreateStoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, s.logger, domain.ClientError("genre and description are required", err))
		return
	}

	story, err := s.pipelineOrchestrator.Run(c.Request.Context(), pipelineParams(request), nil)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	c.JSON(http.StatusOK, story)
}

func (s *storyController) StreamStory(c *gin.Context) {
	var request dto.CreateStoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.Status(http.StatusBadRequest)
		c.SSEvent("error", newErrorResponse(domain.ClientError("genre and description are required", err)))
		return
	}

	ctx := c.Request.Context()
	events, errCh := s.pipelineOrchestrator.StartPipeline(ctx, pipelineParams(request))

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				if err := <-errCh; err != nil {
					s.logger.ErrorWithFields(err, "Story stream failed", map[string]interface{}{
						"category": domain.CategoryOf(err),
					})
					c.SSEvent("error", newErrorResponse(err))
				}
				return false
			}
			if event.Type == domain.StoryPipelineEvent {
				c.SSEvent(string(event.Type), event.Story)
				return true
			}
			c.SSEvent(string(event.Type), event)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func (s *storyController) RegisterRoutes(g *gin.Engine) {
	api := g.Group("/api")
	api.POST("/generate-story", s.GenerateStory)
	api.POST("/stories", s.CreateStory)
	api.POST("/stories/stream", middleware.SSEMiddleware(), s.StreamStory)
}

func pipelineParams(request dto.CreateStoryRequest) inbound.StartPipelineParams {
	audioOptions := map[string]string{
		domain.ProviderOption: request.AudioProvider,
		domain.VoiceOption:    request.Voice,
	}
	if request.Speed != nil {
		audioOptions[domain.SpeedOption] = strconv.FormatFloat(*request.Speed, 'f', -1, 64)
	}
	return inbound.StartPipelineParams{
		StoryID:      uuid.NewString(),
		Genre:        request.Genre,
		Description:  request.Description,
		Language:     request.Language,
		TextProvider: request.TextProvider,
		ImageOptions: map[string]string{
			domain.ProviderOption: request.ImageProvider,
			domain.ModelOption:    request.ImageModel,
			domain.StyleOption:    request.Style,
		},
		AudioOptions: audioOptions,
	}
}
