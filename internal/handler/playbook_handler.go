package handler

import (
	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/response"
	"pulseboard/internal/services"

	"github.com/gin-gonic/gin"
)

// ListPlaybooks handles GET /api/playbooks.
func (s *Server) ListPlaybooks(c *gin.Context) {
	playbooks, err := s.PlaybookService.ListPlaybooks(c.Request.Context())
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, playbooks)
}

// UpsertPlaybook handles PUT /api/playbooks/:condition.
func (s *Server) UpsertPlaybook(c *gin.Context) {
	var params services.PlaybookUpsertParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	playbook, err := s.PlaybookService.UpsertPlaybook(c.Request.Context(), c.Param("condition"), params)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, playbook)
}
