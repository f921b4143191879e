package controllers

import (
	"errors"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/domain"
	"illustrated-story-api/infrastructure/gin_interface/dto"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterFallbackHandlers answers unknown methods on known routes with a
// JSON 405 and unknown routes with a JSON 404.
func RegisterFallbackHandlers(g *gin.Engine) {
	g.HandleMethodNotAllowed = true
	g.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.ErrorResponse{
			Error:    "Method not allowed",
			Category: string(domain.ClientErrorCategory),
		})
	})
	g.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:    "Not found",
			Category: string(domain.ClientErrorCategory),
		})
	})
}

func statusFor(category domain.ErrorCategory) int {
	if category == domain.ClientErrorCategory {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func newErrorResponse(err error) dto.ErrorResponse {
	var pipelineErr *domain.PipelineError
	if errors.As(err, &pipelineErr) {
		return dto.ErrorResponse{
			Error:    pipelineErr.Message,
			Category: string(pipelineErr.Category),
			Details:  pipelineErr.Details(),
		}
	}
	return dto.ErrorResponse{
		Error:    "internal server error",
		Category: string(domain.CategoryOf(err)),
		Details:  err.Error(),
	}
}

func respondError(c *gin.Context, logger outbound.LoggerPort, err error) {
	response := newErrorResponse(err)
	status := statusFor(domain.ErrorCategory(response.Category))
	if status >= http.StatusInternalServerError {
		logger.ErrorWithFields(err, "Request failed", map[string]interface{}{
			"path":     c.Request.URL.Path,
			"category": response.Category,
		})
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, response)
}
