package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fieldservice/internal/handler"
	"fieldservice/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	JobHandler        *handler.JobHandler
	WorkerHandler     *handler.WorkerHandler
	NavigationHandler *handler.NavigationHandler
	RedisClient       *redis.Client
	NewRelicApp       *newrelic.Application
	Logger            *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.TransactionAttributes())
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.Logger))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Job routes.
		jobs := v1.Group("/jobs")
		{
			jobs.GET("/:number", deps.JobHandler.GetJob)
			jobs.DELETE("/:number/cache", deps.JobHandler.InvalidateJob)
			jobs.POST("/:number/complete", deps.JobHandler.CompleteJob)
		}

		// Worker routes.
		workers := v1.Group("/workers")
		{
			workers.POST("/:id/location", deps.WorkerHandler.UpdateLocation)
			workers.DELETE("/:id/location", deps.WorkerHandler.ClearLocation)
			workers.POST("/:id/clock-in", deps.WorkerHandler.ClockIn)
			workers.POST("/:id/clock-out", deps.WorkerHandler.ClockOut)
			workers.GET("/:id/attendance", deps.WorkerHandler.GetAttendance)
			workers.POST("/:id/navigation", deps.NavigationHandler.Start)
			workers.GET("/:id/navigation", deps.NavigationHandler.Get)
			workers.DELETE("/:id/navigation", deps.NavigationHandler.Stop)
		}

		v1.GET("/locations/nearby", deps.WorkerHandler.Nearby)

		// Navigation routes.
		nav := v1.Group("/navigation")
		{
			nav.GET("/config", deps.NavigationHandler.GetConfig)
			nav.POST("/estimate", deps.NavigationHandler.Estimate)
		}
	}

	return router
}
