package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/domain"
	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/dto"
	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/identity"
	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/service"
	"github.com/gin-gonic/gin"
)

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger         *slog.Logger
	jobs           *service.JobService
	maxUploadBytes int64
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:         deps.Logger,
		jobs:           deps.Jobs,
		maxUploadBytes: deps.MaxUploadBytes,
	}
}

// parseJobForm reads the multipart fields shared by create and update:
// company, role, status, a statusHistory JSON string, and an optional
// resume file. The returned input's Resume reader stays valid until the
// request body is closed.
func (h *JobHandler) parseJobForm(c *gin.Context) (service.JobInput, error) {
	input := service.JobInput{
		Company: c.PostForm("company"),
		Role:    c.PostForm("role"),
		Status:  c.PostForm("status"),
	}

	if raw := c.PostForm("statusHistory"); raw != "" {
		var entries []dto.StatusHistoryEntryDTO
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return input, fmt.Errorf("%w: statusHistory is not valid JSON", domain.ErrValidation)
		}

		history, err := dto.ParseHistory(entries)
		if err != nil {
			return input, err
		}
		input.History = history
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil
		}
		return input, fmt.Errorf("%w: invalid resume upload", domain.ErrValidation)
	}

	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return input, fmt.Errorf("%w: resume exceeds maximum size of %d bytes", domain.ErrValidation, h.maxUploadBytes)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return input, fmt.Errorf("failed to open resume upload: %w", err)
	}

	input.Resume = &service.ResumeUpload{
		Filename: fileHeader.Filename,
		Reader:   file,
	}

	return input, nil
}

// ListJobs handles GET /api/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	userID := identity.UserID(c)

	jobs, err := h.jobs.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	out := make([]dto.JobDTO, len(jobs))
	for i := range jobs {
		out[i] = dto.FromJob(&jobs[i])
	}

	c.JSON(http.StatusOK, out)
}

// CreateJob handles POST /api/jobs (multipart)
func (h *JobHandler) CreateJob(c *gin.Context) {
	userID := identity.UserID(c)

	input, err := h.parseJobForm(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), userID, input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.JobResponse{
		Message: "Job added successfully",
		Job:     dto.FromJob(job),
	})
}

// UpdateJob handles PUT /api/jobs/:id (multipart)
func (h *JobHandler) UpdateJob(c *gin.Context) {
	userID := identity.UserID(c)
	jobID := c.Param("id")

	input, err := h.parseJobForm(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), userID, jobID, input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.JobResponse{
		Message: "Job updated successfully",
		Job:     dto.FromJob(job),
	})
}

// DeleteJob handles DELETE /api/jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	userID := identity.UserID(c)
	jobID := c.Param("id")

	if err := h.jobs.Delete(c.Request.Context(), userID, jobID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}
