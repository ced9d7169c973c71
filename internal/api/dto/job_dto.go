package dto

import (
	"fmt"
	"time"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/domain"
)

// StatusHistoryEntryDTO is one status log entry on the wire.
type StatusHistoryEntryDTO struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// JobDTO is the wire representation of a job record.
type JobDTO struct {
	JobID         string                  `json:"jobId"`
	UserID        string                  `json:"userId"`
	Company       string                  `json:"company"`
	Role          string                  `json:"role"`
	Status        string                  `json:"status"`
	ResumeURL     string                  `json:"resumeUrl,omitempty"`
	StatusHistory []StatusHistoryEntryDTO `json:"statusHistory"`
	CreatedAt     string                  `json:"createdAt"`
	UpdatedAt     string                  `json:"updatedAt"`
}

type JobResponse struct {
	Message string `json:"message"`
	Job     JobDTO `json:"job"`
}

// FromJob converts a domain job to its wire form.
func FromJob(job *domain.Job) JobDTO {
	history := make([]StatusHistoryEntryDTO, len(job.StatusHistory))
	for i, entry := range job.StatusHistory {
		history[i] = StatusHistoryEntryDTO{
			Status:    string(entry.Status),
			Timestamp: entry.Timestamp.Format(time.RFC3339Nano),
		}
	}

	return JobDTO{
		JobID:         job.JobID,
		UserID:        job.UserID,
		Company:       job.Company,
		Role:          job.Role,
		Status:        string(job.Status),
		ResumeURL:     job.ResumeURL,
		StatusHistory: history,
		CreatedAt:     job.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     job.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ParseHistory converts wire entries into a domain history. Entries with a
// missing timestamp keep the zero time; normalization and the timeline sort
// handle ordering downstream.
func ParseHistory(entries []StatusHistoryEntryDTO) (domain.StatusHistory, error) {
	history := make(domain.StatusHistory, 0, len(entries))
	for _, e := range entries {
		status, err := domain.ParseStatus(e.Status)
		if err != nil {
			return nil, err
		}

		var ts time.Time
		if e.Timestamp != "" {
			ts, err = time.Parse(time.RFC3339Nano, e.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid history timestamp %q", domain.ErrValidation, e.Timestamp)
			}
		}

		history = append(history, domain.StatusHistoryEntry{Status: status, Timestamp: ts})
	}

	return history, nil
}
