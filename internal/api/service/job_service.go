package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/domain"
	"github.com/google/uuid"
)

// ResumeUpload is a resume file attached to a create or update request.
type ResumeUpload struct {
	Filename string
	Reader   io.Reader
}

// JobInput carries the caller-supplied fields of a create or update. History
// is the full status log as the caller wants it stored; it is normalized so
// its last entry always matches Status before persisting.
type JobInput struct {
	Company string
	Role    string
	Status  string
	History domain.StatusHistory
	Resume  *ResumeUpload
}

// JobService owns the job record lifecycle: validation, ownership scoping,
// the status-history invariant, and resume blob bookkeeping.
type JobService struct {
	store   JobStore
	blobs   BlobStore
	cleaner Cleaner
	logger  *slog.Logger
	now     func() time.Time
}

func NewJobService(store JobStore, blobs BlobStore, cleaner Cleaner, logger *slog.Logger) *JobService {
	return &JobService{
		store:   store,
		blobs:   blobs,
		cleaner: cleaner,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *JobService) validate(in *JobInput) (domain.Status, error) {
	in.Company = strings.TrimSpace(in.Company)
	in.Role = strings.TrimSpace(in.Role)

	if in.Company == "" {
		return "", fmt.Errorf("%w: company is required", domain.ErrValidation)
	}
	if in.Role == "" {
		return "", fmt.Errorf("%w: role is required", domain.ErrValidation)
	}

	return domain.ParseStatus(in.Status)
}

// Create persists a new job for ownerID. The resume blob, when present, is
// written first; if the record insert then fails the blob is removed again
// so no orphaned file survives a failed create.
func (s *JobService) Create(ctx context.Context, ownerID string, in JobInput) (*domain.Job, error) {
	status, err := s.validate(&in)
	if err != nil {
		return nil, err
	}

	resumeURL := ""
	if in.Resume != nil {
		resumeURL, err = s.blobs.Save(ownerID, in.Resume.Filename, in.Resume.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to store resume: %w", err)
		}
	}

	now := s.now().UTC()
	job := &domain.Job{
		JobID:         uuid.New().String(),
		UserID:        ownerID,
		Company:       in.Company,
		Role:          in.Role,
		Status:        status,
		ResumeURL:     resumeURL,
		StatusHistory: in.History.Normalize(status, now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		if resumeURL != "" {
			if rmErr := s.blobs.Remove(resumeURL); rmErr != nil {
				s.logger.Error("Failed to roll back resume blob after create failure",
					slog.String("path", resumeURL),
					slog.String("error", rmErr.Error()),
				)
			}
		}
		return nil, err
	}

	s.logger.Info("Job created",
		slog.String("job_id", job.JobID),
		slog.String("user_id", ownerID),
		slog.String("company", job.Company),
		slog.String("status", string(job.Status)),
	)

	return job, nil
}

// Update replaces the caller-editable fields of an owned job. A new resume
// upload is written before the record update; on record failure the new,
// still-unreferenced blob is removed inline, and on success the superseded
// blob is handed to best-effort cleanup.
func (s *JobService) Update(ctx context.Context, ownerID, jobID string, in JobInput) (*domain.Job, error) {
	status, err := s.validate(&in)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetJobForUser(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}

	newResumeURL := ""
	if in.Resume != nil {
		newResumeURL, err = s.blobs.Save(ownerID, in.Resume.Filename, in.Resume.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to store resume: %w", err)
		}
	}

	now := s.now().UTC()
	job := &domain.Job{
		JobID:         existing.JobID,
		UserID:        existing.UserID,
		Company:       in.Company,
		Role:          in.Role,
		Status:        status,
		ResumeURL:     existing.ResumeURL,
		StatusHistory: in.History.Normalize(status, now),
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     now,
	}
	if newResumeURL != "" {
		job.ResumeURL = newResumeURL
	}

	if err := s.store.UpdateJob(ctx, job); err != nil {
		if newResumeURL != "" {
			if rmErr := s.blobs.Remove(newResumeURL); rmErr != nil {
				s.logger.Error("Failed to roll back resume blob after update failure",
					slog.String("path", newResumeURL),
					slog.String("error", rmErr.Error()),
				)
			}
		}
		return nil, err
	}

	if newResumeURL != "" && existing.ResumeURL != "" {
		s.scheduleCleanup(ctx, existing.ResumeURL, "replaced")
	}

	s.logger.Info("Job updated",
		slog.String("job_id", job.JobID),
		slog.String("user_id", ownerID),
		slog.String("status", string(job.Status)),
	)

	return job, nil
}

// Delete removes an owned job. The record deletion is the authoritative
// outcome; the resume blob, if any, is cleaned up afterwards on a
// best-effort basis and a failure there is only logged.
func (s *JobService) Delete(ctx context.Context, ownerID, jobID string) error {
	resumeURL, err := s.store.DeleteJob(ctx, ownerID, jobID)
	if err != nil {
		return err
	}

	if resumeURL != "" {
		s.scheduleCleanup(ctx, resumeURL, "job deleted")
	}

	s.logger.Info("Job deleted",
		slog.String("job_id", jobID),
		slog.String("user_id", ownerID),
	)

	return nil
}

// List returns all of ownerID's jobs, newest first.
func (s *JobService) List(ctx context.Context, ownerID string) ([]domain.Job, error) {
	return s.store.ListJobs(ctx, ownerID)
}

// scheduleCleanup hands a superseded blob to the async cleanup pipeline and
// falls back to removing it directly when no pipeline is available. Either
// way the originating request never fails because of it.
func (s *JobService) scheduleCleanup(ctx context.Context, urlPath, reason string) {
	if s.cleaner != nil {
		err := s.cleaner.Schedule(ctx, urlPath, reason)
		if err == nil {
			return
		}
		s.logger.Warn("Failed to schedule blob cleanup, removing inline",
			slog.String("path", urlPath),
			slog.String("error", err.Error()),
		)
	}

	if err := s.blobs.Remove(urlPath); err != nil {
		s.logger.Error("Failed to remove superseded resume blob",
			slog.String("path", urlPath),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
	}
}
