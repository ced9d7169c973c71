// Package service holds the domain logic behind the HTTP handlers: account
// registration and token issuance, the job record lifecycle, and profile
// updates. Services talk to storage and the blob store through narrow
// interfaces so the logic is testable without PostgreSQL or a filesystem.
package service

import (
	"context"
	"io"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/domain"
)

// UserStore is the slice of storage the auth and profile services need.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
}

// JobStore is the slice of storage the job service needs. Every lookup is
// owner-scoped; a foreign job behaves exactly like a missing one.
type JobStore interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJobForUser(ctx context.Context, userID, jobID string) (*domain.Job, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, userID, jobID string) (resumeURL string, err error)
	ListJobs(ctx context.Context, userID string) ([]domain.Job, error)
}

// BlobStore stores uploaded resume files and maps them to URL paths.
type BlobStore interface {
	Save(ownerID, originalName string, r io.Reader) (string, error)
	Remove(urlPath string) error
}

// Cleaner schedules best-effort deletion of a superseded resume blob.
type Cleaner interface {
	Schedule(ctx context.Context, urlPath, reason string) error
}
