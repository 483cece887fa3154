// Package handler wires HTTP requests to the service layer.
package handler

import (
	"time"

	"pulseboard/internal/services"
	"pulseboard/internal/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Server aggregates the handler dependencies.
type Server struct {
	DB                *gorm.DB
	config            types.ConfigManager
	ReadingService    *services.ReadingService
	ConfigService     *services.ConfigService
	RuleService       *services.RuleService
	PlaybookService   *services.PlaybookService
	EvaluationService *services.EvaluationService
}

// NewServer constructs a Server.
func NewServer(
	db *gorm.DB,
	configManager types.ConfigManager,
	readingService *services.ReadingService,
	configService *services.ConfigService,
	ruleService *services.RuleService,
	playbookService *services.PlaybookService,
	evaluationService *services.EvaluationService,
) *Server {
	return &Server{
		DB:                db,
		config:            configManager,
		ReadingService:    readingService,
		ConfigService:     configService,
		RuleService:       ruleService,
		PlaybookService:   playbookService,
		EvaluationService: evaluationService,
	}
}

// Health handles the liveness probe.
func (s *Server) Health(c *gin.Context) {
	status := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err != nil || sqlDB.Ping() != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			c.JSON(503, status)
			return
		}
	}

	c.JSON(200, status)
}
