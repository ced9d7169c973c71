// Package storage persists users and jobs in PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/domain"
	"github.com/SETHUKUMAR1709/job-application-tracker/shared/postgresql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

func (s *Storage) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			user_id, username, password_hash, bio, skills, experience,
			education, birthday, hometown, social_links, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		user.UserID,
		user.Username,
		user.PasswordHash,
		user.Bio,
		user.Skills,
		user.Experience,
		user.Education,
		user.Birthday,
		user.Hometown,
		user.SocialLinks,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT
			user_id, username, password_hash, bio, skills, experience,
			education, birthday, hometown, social_links, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	err := s.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

func (s *Storage) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT
			user_id, username, password_hash, bio, skills, experience,
			education, birthday, hometown, social_links, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	err := s.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// UpdateProfile replaces every profile field of the user row in one write.
// The caller resends the full desired state; absent fields are written as
// their zero values.
func (s *Storage) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET
			bio = $1, skills = $2, experience = $3, education = $4,
			birthday = $5, hometown = $6, social_links = $7, updated_at = $8
		WHERE user_id = $9
	`

	res, err := s.db.ExecContext(
		ctx,
		query,
		user.Bio,
		user.Skills,
		user.Experience,
		user.Education,
		user.Birthday,
		user.Hometown,
		user.SocialLinks,
		user.UpdatedAt,
		user.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (s *Storage) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, user_id, company, role, status,
			resume_url, status_history, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.UserID,
		job.Company,
		job.Role,
		job.Status,
		job.ResumeURL,
		job.StatusHistory,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetJobForUser loads one job scoped to its owner. A job that exists but
// belongs to someone else is indistinguishable from one that does not exist.
func (s *Storage) GetJobForUser(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	var job domain.Job
	query := `
		SELECT
			job_id, user_id, company, role, status,
			resume_url, status_history, created_at, updated_at
		FROM jobs
		WHERE job_id = $1 AND user_id = $2
	`

	err := s.db.GetContext(ctx, &job, query, jobID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func (s *Storage) UpdateJob(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs SET
			company = $1, role = $2, status = $3,
			resume_url = $4, status_history = $5, updated_at = $6
		WHERE job_id = $7 AND user_id = $8
	`

	res, err := s.db.ExecContext(
		ctx,
		query,
		job.Company,
		job.Role,
		job.Status,
		job.ResumeURL,
		job.StatusHistory,
		job.UpdatedAt,
		job.JobID,
		job.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteJob removes an owner's job and returns the resume URL it referenced,
// empty when no resume was attached.
func (s *Storage) DeleteJob(ctx context.Context, userID, jobID string) (string, error) {
	var resumeURL sql.NullString
	query := `
		DELETE FROM jobs
		WHERE job_id = $1 AND user_id = $2
		RETURNING resume_url
	`

	err := s.db.GetContext(ctx, &resumeURL, query, jobID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to delete job: %w", err)
	}

	return resumeURL.String, nil
}

// ListJobs returns all jobs owned by userID, newest first. The job id
// tie-break keeps the order stable for equal creation times.
func (s *Storage) ListJobs(ctx context.Context, userID string) ([]domain.Job, error) {
	query := `
		SELECT
			job_id, user_id, company, role, status,
			resume_url, status_history, created_at, updated_at
		FROM jobs
		WHERE user_id = $1
		ORDER BY created_at DESC, job_id DESC
	`

	jobs := []domain.Job{}
	err := s.db.SelectContext(ctx, &jobs, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}
