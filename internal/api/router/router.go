package router

import (
	"net/http"

	"leadscout/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, apiKey string) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint (not authenticated)
	r.GET("/health", func(c *gin.Context) {
		if err := deps.Storage.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "leadscout-api",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "leadscout-api",
		})
	})

	jobHandler := handler.NewJobHandler(deps)
	titleHandler := handler.NewTitleHandler(deps)
	exportHandler := handler.NewExportHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware(apiKey))
	{
		jobs := v1.Group("/jobs")
		{
			// POST /api/v1/jobs - Submit a new lead-discovery job
			jobs.POST("", jobHandler.CreateJob)

			// GET /api/v1/jobs - List jobs with filtering and pagination
			jobs.GET("", jobHandler.ListJobs)

			// GET /api/v1/jobs/:job_id - Get job details with progress
			jobs.GET("/:job_id", jobHandler.GetJob)
		}

		titles := v1.Group("/titles")
		{
			// GET /api/v1/titles/:job_id - Aggregated title counts
			titles.GET("/:job_id", titleHandler.GetTitles)

			// POST /api/v1/titles/:job_id - Submit title selection and queue export
			titles.POST("/:job_id", titleHandler.SelectTitles)
		}

		exports := v1.Group("/exports")
		{
			// GET /api/v1/exports/:job_id - Latest export status
			exports.GET("/:job_id", exportHandler.GetExport)
		}
	}

	return r
}
