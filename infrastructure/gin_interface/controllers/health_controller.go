package controllers

import (
	"illustrated-story-api/application/services"
	"illustrated-story-api/domain"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

type HealthController interface {
	Health(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type healthController struct {
	registry *services.ProviderRegistry
}

func NewHealthController(registry *services.ProviderRegistry) HealthController {
	return &healthController{registry: registry}
}

func (h *healthController) Health(c *gin.Context) {
	providers := make(map[domain.GenerationKind][]string)
	for _, kind := range []domain.GenerationKind{domain.TextGenerationKind, domain.ImageGenerationKind, domain.SpeechGenerationKind} {
		names := h.registry.Names(kind)
		sort.Strings(names)
		providers[kind] = names
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"providers": providers,
	})
}

func (h *healthController) RegisterRoutes(g *gin.Engine) {
	g.GET("/health", h.Health)
}
