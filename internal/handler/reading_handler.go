package handler

import (
	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/models"
	"pulseboard/internal/response"
	"pulseboard/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// CreateReadingsRequest accepts either one reading inline or a batch.
type CreateReadingsRequest struct {
	services.ReadingCreateParams
	Readings []services.ReadingCreateParams `json:"readings"`
}

// CreateReadings handles POST /api/readings.
func (s *Server) CreateReadings(c *gin.Context) {
	var req CreateReadingsRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	if len(req.Readings) > 0 {
		readings, err := s.ReadingService.CreateReadings(c.Request.Context(), req.Readings)
		if HandleServiceError(c, err) {
			return
		}
		response.Success(c, gin.H{"created": len(readings)})
		return
	}

	reading, err := s.ReadingService.CreateReading(c.Request.Context(), req.ReadingCreateParams)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, reading)
}

// ListReadings handles GET /api/readings with pagination and optional
// resource/metric filters.
func (s *Server) ListReadings(c *gin.Context) {
	query := s.DB.WithContext(c.Request.Context()).Model(&models.MetricReading{}).Order("timestamp DESC")
	if resourceID := c.Query("resource_id"); resourceID != "" {
		query = query.Where("resource_id = ?", resourceID)
	}
	if metricKey := c.Query("metric_key"); metricKey != "" {
		query = query.Where("metric_key = ?", metricKey)
	}

	var readings []models.MetricReading
	result, err := response.Paginate(c, query, &readings)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, result)
}
