package handler

import (
	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/response"
	"pulseboard/internal/services"

	"github.com/gin-gonic/gin"
)

// ListConfigs handles GET /api/configs.
func (s *Server) ListConfigs(c *gin.Context) {
	configs, err := s.ConfigService.ListConfigs(c.Request.Context())
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, configs)
}

// GetActiveConfig handles GET /api/configs/active. Bootstraps the default
// configuration on first use.
func (s *Server) GetActiveConfig(c *gin.Context) {
	config, err := s.ConfigService.GetActiveConfig(c.Request.Context())
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, config)
}

// CreateConfig handles POST /api/configs.
func (s *Server) CreateConfig(c *gin.Context) {
	var params services.ConfigCreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	config, err := s.ConfigService.CreateConfig(c.Request.Context(), params)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, config)
}

// UpdateConfig handles PUT /api/configs/:id.
func (s *Server) UpdateConfig(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var params services.ConfigUpdateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	config, err := s.ConfigService.UpdateConfig(c.Request.Context(), id, params)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, config)
}

// DeleteConfig handles DELETE /api/configs/:id.
func (s *Server) DeleteConfig(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if HandleServiceError(c, s.ConfigService.DeleteConfig(c.Request.Context(), id)) {
		return
	}
	response.Success(c, gin.H{"deleted": id})
}

// ActivateConfig handles POST /api/configs/:id/activate.
func (s *Server) ActivateConfig(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	config, err := s.ConfigService.ActivateConfig(c.Request.Context(), id)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, config)
}
