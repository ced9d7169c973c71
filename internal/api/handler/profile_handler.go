package handler

import (
	"log/slog"
	"net/http"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/dto"
	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/identity"
	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/service"
	"github.com/gin-gonic/gin"
)

// ProfileHandler handles profile read and update requests
type ProfileHandler struct {
	logger   *slog.Logger
	profiles *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler instance
func NewProfileHandler(deps *Dependencies) *ProfileHandler {
	return &ProfileHandler{
		logger:   deps.Logger,
		profiles: deps.Profiles,
	}
}

// GetProfile handles GET /api/profile/:userId
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	requesterID := identity.UserID(c)
	targetID := c.Param("userId")

	user, err := h.profiles.Get(c.Request.Context(), requesterID, targetID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUser(user))
}

// UpdateProfile handles PUT /api/profile/:userId
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	requesterID := identity.UserID(c)
	targetID := c.Param("userId")

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	profile, err := req.ToProfile()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	user, err := h.profiles.Update(c.Request.Context(), requesterID, targetID, profile)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "Profile updated successfully",
		User:    dto.FromUser(user),
	})
}
