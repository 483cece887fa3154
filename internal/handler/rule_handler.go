package handler

import (
	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/response"
	"pulseboard/internal/services"

	"github.com/gin-gonic/gin"
)

// ListRules handles GET /api/rules with an optional metric_key filter.
func (s *Server) ListRules(c *gin.Context) {
	rules, err := s.RuleService.ListRuleVersions(c.Request.Context(), c.Query("metric_key"))
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, rules)
}

// CreateRule handles POST /api/rules. The new version starts inactive.
func (s *Server) CreateRule(c *gin.Context) {
	var params services.RuleCreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	rule, err := s.RuleService.CreateRuleVersion(c.Request.Context(), params)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, rule)
}

// ActivateRule handles POST /api/rules/:id/activate.
func (s *Server) ActivateRule(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	rule, err := s.RuleService.ActivateRuleVersion(c.Request.Context(), id)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, rule)
}

// GetRuleHistory handles GET /api/rules/:id/history, returning the
// version chain newest-first.
func (s *Server) GetRuleHistory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	chain, err := s.RuleService.GetVersionHistory(c.Request.Context(), id)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, chain)
}
