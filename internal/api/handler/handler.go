package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/domain"
	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/service"
	"github.com/gin-gonic/gin"
)

// HealthChecker reports backing-store reachability for the health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger         *slog.Logger
	Auth           *service.AuthService
	Jobs           *service.JobService
	Profiles       *service.ProfileService
	Health         HealthChecker
	MaxUploadBytes int64
}

// writeError maps a service error onto the HTTP taxonomy. Anything outside
// the domain sentinels is a persistence-level failure and is logged with
// its cause but reported generically.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized access"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, domain.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"message": "Username already taken"})
	default:
		logger.Error("Request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
