package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Status is the application status of a tracked job. The set is closed;
// any status may transition to any other status.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

// ParseStatus validates a raw status string against the closed enum.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// StatusHistoryEntry is one immutable record in a job's append-only status log.
type StatusHistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusHistory is the ordered status log of a job. It is stored as a JSONB
// column; duplicates of consecutive statuses are permitted, the log is never
// deduplicated.
type StatusHistory []StatusHistoryEntry

// Value implements driver.Valuer for JSONB storage.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		h = StatusHistory{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for JSONB storage.
func (h *StatusHistory) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*h = StatusHistory{}
		return nil
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	}
	return fmt.Errorf("cannot scan %T into StatusHistory", src)
}

// Normalize returns a history whose final entry matches status, which is the
// invariant every persisted job must hold. An empty history is seeded with a
// single entry at now; a history ending in a different status gets a new
// entry appended at now. Existing entries are never rewritten.
func (h StatusHistory) Normalize(status Status, now time.Time) StatusHistory {
	out := make(StatusHistory, len(h))
	copy(out, h)

	if len(out) == 0 || out[len(out)-1].Status != status {
		out = append(out, StatusHistoryEntry{Status: status, Timestamp: now})
	}
	return out
}

// Timeline returns the history sorted ascending by timestamp. The stored
// order is usually already ascending but is not trusted; the sort is stable
// so equal timestamps keep their log order.
func (h StatusHistory) Timeline() StatusHistory {
	out := make(StatusHistory, len(h))
	copy(out, h)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Job is one tracked job application, owned by a single user.
type Job struct {
	JobID         string        `db:"job_id"`
	UserID        string        `db:"user_id"`
	Company       string        `db:"company"`
	Role          string        `db:"role"`
	Status        Status        `db:"status"`
	ResumeURL     string        `db:"resume_url"`
	StatusHistory StatusHistory `db:"status_history"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}
