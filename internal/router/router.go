package router

import (
	"pulseboard/internal/handler"
	"pulseboard/internal/middleware"
	"pulseboard/internal/types"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// maxIngestBodyBytes caps the size of a readings batch payload.
const maxIngestBodyBytes = 10 * 1024 * 1024

// NewRouter assembles the gin engine with global middleware and all routes.
func NewRouter(serverHandler *handler.Server, configManager types.ConfigManager) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Register global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger(configManager.GetLogConfig()))
	router.Use(middleware.CORS(configManager.GetCORSConfig()))
	router.Use(middleware.SecurityHeaders())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerSystemRoutes(router, serverHandler)
	registerAPIRoutes(router, serverHandler, configManager)

	return router
}

// registerSystemRoutes registers system-level routes
func registerSystemRoutes(router *gin.Engine, serverHandler *handler.Server) {
	router.GET("/health", serverHandler.Health)
}

// registerAPIRoutes registers API routes
func registerAPIRoutes(router *gin.Engine, serverHandler *handler.Server, configManager types.ConfigManager) {
	api := router.Group("/api")
	api.Use(middleware.Auth(configManager.GetAuthConfig()))

	readings := api.Group("/readings")
	{
		readings.POST("", middleware.RequestBodySizeLimit(maxIngestBodyBytes), serverHandler.CreateReadings)
		readings.GET("", serverHandler.ListReadings)
	}

	configs := api.Group("/configs")
	{
		configs.GET("", serverHandler.ListConfigs)
		configs.GET("/active", serverHandler.GetActiveConfig)
		configs.POST("", serverHandler.CreateConfig)
		configs.PUT("/:id", serverHandler.UpdateConfig)
		configs.DELETE("/:id", serverHandler.DeleteConfig)
		configs.POST("/:id/activate", serverHandler.ActivateConfig)
	}

	rules := api.Group("/rules")
	{
		rules.GET("", serverHandler.ListRules)
		rules.POST("", serverHandler.CreateRule)
		rules.POST("/:id/activate", serverHandler.ActivateRule)
		rules.GET("/:id/history", serverHandler.GetRuleHistory)
	}

	playbooks := api.Group("/playbooks")
	{
		playbooks.GET("", serverHandler.ListPlaybooks)
		playbooks.PUT("/:condition", serverHandler.UpsertPlaybook)
	}

	api.GET("/evaluations/:resourceId/:metricKey", serverHandler.Evaluate)
}
