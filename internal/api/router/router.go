package router

import (
	"log/slog"
	"net/http"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/handler"
	"github.com/SETHUKUMAR1709/job-application-tracker/internal/blob"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, uploadsDir string) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint, reports database reachability when wired
	r.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health.HealthCheck(c.Request.Context()); err != nil {
				deps.Logger.Error("Health check failed",
					slog.String("error", err.Error()),
				)
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "job-tracker-api",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "job-tracker-api",
		})
	})

	// Uploaded resumes are served verbatim under the path stored on the job
	r.Static(blob.URLPrefix, uploadsDir)

	authHandler := handler.NewAuthHandler(deps)
	jobHandler := handler.NewJobHandler(deps)
	profileHandler := handler.NewProfileHandler(deps)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(AuthMiddleware(deps.Auth))
		{
			jobs := protected.Group("/jobs")
			{
				jobs.GET("", jobHandler.ListJobs)
				jobs.POST("", jobHandler.CreateJob)
				jobs.PUT("/:id", jobHandler.UpdateJob)
				jobs.DELETE("/:id", jobHandler.DeleteJob)
			}

			profile := protected.Group("/profile")
			{
				profile.GET("/:userId", profileHandler.GetProfile)
				profile.PUT("/:userId", profileHandler.UpdateProfile)
			}
		}
	}

	return r
}
