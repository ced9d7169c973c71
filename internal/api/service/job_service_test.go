package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeJobStore keeps jobs in memory with owner-scoped lookups, mirroring
// the collapsed not-found semantics of the real storage.
type fakeJobStore struct {
	jobs      map[string]*domain.Job
	createErr error
	updateErr error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]*domain.Job)}
}

func (f *fakeJobStore) CreateJob(_ context.Context, job *domain.Job) error {
	if f.createErr != nil {
		return f.createErr
	}
	stored := *job
	f.jobs[job.JobID] = &stored
	return nil
}

func (f *fakeJobStore) GetJobForUser(_ context.Context, userID, jobID string) (*domain.Job, error) {
	job, ok := f.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobStore) UpdateJob(_ context.Context, job *domain.Job) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	existing, ok := f.jobs[job.JobID]
	if !ok || existing.UserID != job.UserID {
		return domain.ErrNotFound
	}
	stored := *job
	f.jobs[job.JobID] = &stored
	return nil
}

func (f *fakeJobStore) DeleteJob(_ context.Context, userID, jobID string) (string, error) {
	job, ok := f.jobs[jobID]
	if !ok || job.UserID != userID {
		return "", domain.ErrNotFound
	}
	delete(f.jobs, jobID)
	return job.ResumeURL, nil
}

func (f *fakeJobStore) ListJobs(_ context.Context, userID string) ([]domain.Job, error) {
	var out []domain.Job
	for _, job := range f.jobs {
		if job.UserID == userID {
			out = append(out, *job)
		}
	}
	return out, nil
}

// fakeBlobStore records saves and removals without touching a filesystem.
type fakeBlobStore struct {
	saved   []string
	removed []string
	saveErr error
	nextID  int
}

func (f *fakeBlobStore) Save(ownerID, originalName string, _ io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.nextID++
	path := fmt.Sprintf("/uploads/%s/blob-%d", ownerID, f.nextID)
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeBlobStore) Remove(urlPath string) error {
	f.removed = append(f.removed, urlPath)
	return nil
}

// fakeCleaner records scheduled cleanups and can simulate a broker outage.
type fakeCleaner struct {
	scheduled []string
	err       error
}

func (f *fakeCleaner) Schedule(_ context.Context, urlPath, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, urlPath)
	return nil
}

func newTestJobService(store *fakeJobStore, blobs *fakeBlobStore, cleaner Cleaner) *JobService {
	svc := NewJobService(store, blobs, cleaner, testLogger())
	svc.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestJobService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input JobInput
	}{
		{name: "empty company", input: JobInput{Company: "", Role: "Engineer", Status: "Applied"}},
		{name: "whitespace company", input: JobInput{Company: "   ", Role: "Engineer", Status: "Applied"}},
		{name: "empty role", input: JobInput{Company: "Acme", Role: "", Status: "Applied"}},
		{name: "whitespace role", input: JobInput{Company: "Acme", Role: "\t ", Status: "Applied"}},
		{name: "unknown status", input: JobInput{Company: "Acme", Role: "Engineer", Status: "Pending"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeJobStore()
			blobs := &fakeBlobStore{}
			svc := newTestJobService(store, blobs, nil)

			_, err := svc.Create(context.Background(), "user-1", tt.input)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			assert.Empty(t, store.jobs, "nothing may be persisted on validation failure")
			assert.Empty(t, blobs.saved, "no blob may be written on validation failure")
		})
	}
}

func TestJobService_Create(t *testing.T) {
	t.Run("seeds history when none supplied", func(t *testing.T) {
		store := newFakeJobStore()
		svc := newTestJobService(store, &fakeBlobStore{}, nil)

		job, err := svc.Create(context.Background(), "user-1", JobInput{
			Company: "  Acme  ",
			Role:    "Engineer",
			Status:  "Applied",
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme", job.Company)
		assert.Equal(t, domain.StatusApplied, job.Status)
		require.Len(t, job.StatusHistory, 1)
		assert.Equal(t, job.Status, job.StatusHistory[0].Status)
		assert.Equal(t, job.CreatedAt, job.UpdatedAt)
		assert.Contains(t, store.jobs, job.JobID)
	})

	t.Run("first history entry matches a non-Applied initial status", func(t *testing.T) {
		svc := newTestJobService(newFakeJobStore(), &fakeBlobStore{}, nil)

		job, err := svc.Create(context.Background(), "user-1", JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Interview",
		})

		require.NoError(t, err)
		require.Len(t, job.StatusHistory, 1)
		assert.Equal(t, domain.StatusInterview, job.StatusHistory[0].Status)
	})

	t.Run("keeps caller history and appends when it ends elsewhere", func(t *testing.T) {
		svc := newTestJobService(newFakeJobStore(), &fakeBlobStore{}, nil)
		earlier := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

		job, err := svc.Create(context.Background(), "user-1", JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Offer",
			History: domain.StatusHistory{{Status: domain.StatusApplied, Timestamp: earlier}},
		})

		require.NoError(t, err)
		require.Len(t, job.StatusHistory, 2)
		assert.Equal(t, domain.StatusApplied, job.StatusHistory[0].Status)
		assert.Equal(t, domain.StatusOffer, job.StatusHistory[1].Status)
	})

	t.Run("stores resume and keeps it on success", func(t *testing.T) {
		blobs := &fakeBlobStore{}
		svc := newTestJobService(newFakeJobStore(), blobs, nil)

		job, err := svc.Create(context.Background(), "user-1", JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Applied",
			Resume:  &ResumeUpload{Filename: "cv.pdf", Reader: strings.NewReader("pdf")},
		})

		require.NoError(t, err)
		require.Len(t, blobs.saved, 1)
		assert.Equal(t, blobs.saved[0], job.ResumeURL)
		assert.Empty(t, blobs.removed)
	})

	t.Run("rolls back resume blob when persist fails", func(t *testing.T) {
		store := newFakeJobStore()
		store.createErr = errors.New("db down")
		blobs := &fakeBlobStore{}
		svc := newTestJobService(store, blobs, nil)

		_, err := svc.Create(context.Background(), "user-1", JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Applied",
			Resume:  &ResumeUpload{Filename: "cv.pdf", Reader: strings.NewReader("pdf")},
		})

		require.Error(t, err)
		require.Len(t, blobs.saved, 1)
		assert.Equal(t, blobs.saved, blobs.removed, "orphaned blob must be rolled back")
	})
}

func TestJobService_Update(t *testing.T) {
	seed := func(t *testing.T, store *fakeJobStore, svc *JobService, resume *ResumeUpload) *domain.Job {
		t.Helper()
		job, err := svc.Create(context.Background(), "user-1", JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Applied",
			Resume:  resume,
		})
		require.NoError(t, err)
		return job
	}

	t.Run("foreign owner gets collapsed not-found", func(t *testing.T) {
		store := newFakeJobStore()
		svc := newTestJobService(store, &fakeBlobStore{}, nil)
		job := seed(t, store, svc, nil)

		_, err := svc.Update(context.Background(), "user-2", job.JobID, JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Interview",
		})

		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("missing job gets not-found", func(t *testing.T) {
		svc := newTestJobService(newFakeJobStore(), &fakeBlobStore{}, nil)

		_, err := svc.Update(context.Background(), "user-1", "no-such-job", JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Interview",
		})

		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("status change appends history and preserves created_at", func(t *testing.T) {
		store := newFakeJobStore()
		svc := newTestJobService(store, &fakeBlobStore{}, nil)
		job := seed(t, store, svc, nil)

		updated, err := svc.Update(context.Background(), "user-1", job.JobID, JobInput{
			Company: "Acme",
			Role:    "Senior Engineer",
			Status:  "Interview",
			History: job.StatusHistory,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusInterview, updated.Status)
		require.Len(t, updated.StatusHistory, 2)
		assert.Equal(t, updated.Status, updated.StatusHistory[len(updated.StatusHistory)-1].Status)
		assert.Equal(t, job.CreatedAt, updated.CreatedAt)
	})

	t.Run("replacing the resume cleans up exactly the old blob", func(t *testing.T) {
		store := newFakeJobStore()
		blobs := &fakeBlobStore{}
		cleaner := &fakeCleaner{}
		svc := newTestJobService(store, blobs, cleaner)
		job := seed(t, store, svc, &ResumeUpload{Filename: "v1.pdf", Reader: strings.NewReader("v1")})
		oldURL := job.ResumeURL

		updated, err := svc.Update(context.Background(), "user-1", job.JobID, JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Applied",
			History: job.StatusHistory,
			Resume:  &ResumeUpload{Filename: "v2.pdf", Reader: strings.NewReader("v2")},
		})

		require.NoError(t, err)
		assert.NotEqual(t, oldURL, updated.ResumeURL)
		assert.Equal(t, []string{oldURL}, cleaner.scheduled, "only the superseded blob is cleaned up")
		assert.Empty(t, blobs.removed)
	})

	t.Run("keeps existing resume when none uploaded", func(t *testing.T) {
		store := newFakeJobStore()
		cleaner := &fakeCleaner{}
		svc := newTestJobService(store, &fakeBlobStore{}, cleaner)
		job := seed(t, store, svc, &ResumeUpload{Filename: "v1.pdf", Reader: strings.NewReader("v1")})

		updated, err := svc.Update(context.Background(), "user-1", job.JobID, JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Rejected",
			History: job.StatusHistory,
		})

		require.NoError(t, err)
		assert.Equal(t, job.ResumeURL, updated.ResumeURL)
		assert.Empty(t, cleaner.scheduled)
	})

	t.Run("record failure removes the new blob, never the old one", func(t *testing.T) {
		store := newFakeJobStore()
		blobs := &fakeBlobStore{}
		svc := newTestJobService(store, blobs, nil)
		job := seed(t, store, svc, &ResumeUpload{Filename: "v1.pdf", Reader: strings.NewReader("v1")})

		store.updateErr = errors.New("db down")
		_, err := svc.Update(context.Background(), "user-1", job.JobID, JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Applied",
			History: job.StatusHistory,
			Resume:  &ResumeUpload{Filename: "v2.pdf", Reader: strings.NewReader("v2")},
		})

		require.Error(t, err)
		require.Len(t, blobs.saved, 2)
		assert.Equal(t, []string{blobs.saved[1]}, blobs.removed)
	})

	t.Run("falls back to inline removal when scheduling fails", func(t *testing.T) {
		store := newFakeJobStore()
		blobs := &fakeBlobStore{}
		cleaner := &fakeCleaner{err: errors.New("broker down")}
		svc := newTestJobService(store, blobs, cleaner)
		job := seed(t, store, svc, &ResumeUpload{Filename: "v1.pdf", Reader: strings.NewReader("v1")})
		oldURL := job.ResumeURL

		_, err := svc.Update(context.Background(), "user-1", job.JobID, JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Applied",
			History: job.StatusHistory,
			Resume:  &ResumeUpload{Filename: "v2.pdf", Reader: strings.NewReader("v2")},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{oldURL}, blobs.removed)
	})
}

func TestJobService_Delete(t *testing.T) {
	t.Run("removes record and schedules blob cleanup", func(t *testing.T) {
		store := newFakeJobStore()
		cleaner := &fakeCleaner{}
		svc := newTestJobService(store, &fakeBlobStore{}, cleaner)

		job, err := svc.Create(context.Background(), "user-1", JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Applied",
			Resume:  &ResumeUpload{Filename: "cv.pdf", Reader: strings.NewReader("pdf")},
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), "user-1", job.JobID))

		assert.NotContains(t, store.jobs, job.JobID)
		assert.Equal(t, []string{job.ResumeURL}, cleaner.scheduled)
	})

	t.Run("no blob operation for a job without resume", func(t *testing.T) {
		store := newFakeJobStore()
		blobs := &fakeBlobStore{}
		cleaner := &fakeCleaner{}
		svc := newTestJobService(store, blobs, cleaner)

		job, err := svc.Create(context.Background(), "user-1", JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Applied",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), "user-1", job.JobID))

		assert.Empty(t, cleaner.scheduled)
		assert.Empty(t, blobs.removed)
	})

	t.Run("foreign owner gets collapsed not-found and deletes nothing", func(t *testing.T) {
		store := newFakeJobStore()
		svc := newTestJobService(store, &fakeBlobStore{}, nil)

		job, err := svc.Create(context.Background(), "user-1", JobInput{
			Company: "Acme",
			Role:    "Engineer",
			Status:  "Applied",
		})
		require.NoError(t, err)

		err = svc.Delete(context.Background(), "user-2", job.JobID)

		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Contains(t, store.jobs, job.JobID)
	})
}
