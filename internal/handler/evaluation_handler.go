package handler

import (
	"strconv"

	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/response"

	"github.com/gin-gonic/gin"
)

// Evaluate handles GET /api/evaluations/:resourceId/:metricKey with an
// optional window_size query override.
func (s *Server) Evaluate(c *gin.Context) {
	resourceID := c.Param("resourceId")
	metricKey := c.Param("metricKey")

	var windowOverride *int
	if raw := c.Query("window_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, app_errors.NewValidationError("window_size must be an integer"))
			return
		}
		windowOverride = &n
	}

	result, err := s.EvaluationService.Evaluate(c.Request.Context(), resourceID, metricKey, windowOverride)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, result)
}
