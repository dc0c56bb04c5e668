package http

import (
	"github.com/gin-gonic/gin"

	"github.com/porespective/backend/config"
	"github.com/porespective/backend/internal/infrastructure/observability"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := observability.Component("http")

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.GET("/ingredients", handler.GetIngredients)
		v1.POST("/recommend", handler.Recommend)
		v1.POST("/chat", handler.Chat)
		v1.GET("/sessions/:id", handler.GetSession)
		v1.POST("/ingredient-summary", handler.IngredientSummary)
	}

	return router
}
