package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is an httptest-backed stand-in for the API with just enough
// behavior for the client: a fixed token, an in-memory job list, and the
// same response envelopes the real handlers use.
type fakeServer struct {
	t     *testing.T
	token string
	jobs  []dto.JobDTO

	nextJobID int
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{t: t, token: "test-token", nextJobID: 1}
	srv := httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/register":
		fs.writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})

	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "pw1" {
			fs.writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		fs.writeJSON(w, http.StatusOK, dto.LoginResponse{
			Token:    fs.token,
			UserID:   "user-1",
			Username: req.Username,
		})

	case !fs.authorized(r):
		fs.writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authentication required"})

	case r.Method == http.MethodGet && r.URL.Path == "/api/jobs":
		fs.writeJSON(w, http.StatusOK, fs.jobs)

	case r.Method == http.MethodPost && r.URL.Path == "/api/jobs":
		job := fs.jobFromForm(r)
		fs.jobs = append([]dto.JobDTO{job}, fs.jobs...)
		fs.writeJSON(w, http.StatusCreated, dto.JobResponse{Message: "Job added successfully", Job: job})

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/jobs/"):
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		updated := fs.jobFromForm(r)
		updated.JobID = jobID
		for i := range fs.jobs {
			if fs.jobs[i].JobID == jobID {
				fs.jobs[i] = updated
			}
		}
		fs.writeJSON(w, http.StatusOK, dto.JobResponse{Message: "Job updated successfully", Job: updated})

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/jobs/"):
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		for i := range fs.jobs {
			if fs.jobs[i].JobID == jobID {
				fs.jobs = append(fs.jobs[:i], fs.jobs[i+1:]...)
				break
			}
		}
		fs.writeJSON(w, http.StatusOK, map[string]string{"message": "Job deleted successfully"})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/profile/"):
		fs.writeJSON(w, http.StatusOK, dto.UserDTO{
			UserID:   strings.TrimPrefix(r.URL.Path, "/api/profile/"),
			Username: "alice",
			Bio:      "Backend engineer",
			Skills:   []string{"Go"},
		})

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/profile/"):
		var req dto.UpdateProfileRequest
		require.NoError(fs.t, json.NewDecoder(r.Body).Decode(&req))
		fs.writeJSON(w, http.StatusOK, dto.ProfileResponse{
			Message: "Profile updated successfully",
			User: dto.UserDTO{
				UserID:   strings.TrimPrefix(r.URL.Path, "/api/profile/"),
				Username: "alice",
				Bio:      req.Bio,
				Skills:   req.Skills,
			},
		})

	default:
		fs.writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	}
}

func (fs *fakeServer) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+fs.token
}

func (fs *fakeServer) jobFromForm(r *http.Request) dto.JobDTO {
	require.NoError(fs.t, r.ParseMultipartForm(1<<20))

	job := dto.JobDTO{
		JobID:         fmt.Sprintf("job-%d", fs.nextJobID),
		UserID:        "user-1",
		Company:       r.FormValue("company"),
		Role:          r.FormValue("role"),
		Status:        r.FormValue("status"),
		StatusHistory: []dto.StatusHistoryEntryDTO{},
	}
	fs.nextJobID++

	if raw := r.FormValue("statusHistory"); raw != "" {
		require.NoError(fs.t, json.Unmarshal([]byte(raw), &job.StatusHistory))
	}

	if _, header, err := r.FormFile("resume"); err == nil {
		job.ResumeURL = "/uploads/user-1/" + header.Filename
	}

	return job
}

func (fs *fakeServer) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(fs.t, json.NewEncoder(w).Encode(body))
}

func loggedInClient(t *testing.T) (*fakeServer, *Client) {
	t.Helper()
	fs, srv := newFakeServer(t)
	c := New(srv.URL, srv.Client())
	require.NoError(t, c.Login(context.Background(), "alice", "pw1"))
	return fs, c
}

func TestClient_Login(t *testing.T) {
	t.Run("stores the session", func(t *testing.T) {
		_, c := loggedInClient(t)

		assert.Equal(t, "user-1", c.UserID())
	})

	t.Run("bad credentials surface the server message", func(t *testing.T) {
		_, srv := newFakeServer(t)
		c := New(srv.URL, srv.Client())

		err := c.Login(context.Background(), "alice", "wrong")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "Invalid credentials", apiErr.Message)
		assert.Empty(t, c.UserID())
	})
}

func TestClient_RequiresSession(t *testing.T) {
	_, srv := newFakeServer(t)
	c := New(srv.URL, srv.Client())

	_, err := c.RefreshJobs(context.Background())
	assert.True(t, errors.Is(err, ErrNoSession))

	_, err = c.Profile(context.Background())
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestClient_Logout(t *testing.T) {
	_, c := loggedInClient(t)

	_, err := c.CreateJob(context.Background(), JobForm{Company: "Acme", Role: "Dev", Status: "Applied"})
	require.NoError(t, err)

	c.Logout()

	assert.Empty(t, c.UserID())
	assert.Empty(t, c.Jobs())
	_, err = c.RefreshJobs(context.Background())
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestClient_JobCache(t *testing.T) {
	t.Run("create prepends the server's job", func(t *testing.T) {
		_, c := loggedInClient(t)

		first, err := c.CreateJob(context.Background(), JobForm{Company: "Acme", Role: "Dev", Status: "Applied"})
		require.NoError(t, err)
		second, err := c.CreateJob(context.Background(), JobForm{Company: "Globex", Role: "SRE", Status: "Applied"})
		require.NoError(t, err)

		jobs := c.Jobs()
		require.Len(t, jobs, 2)
		assert.Equal(t, second.JobID, jobs[0].JobID)
		assert.Equal(t, first.JobID, jobs[1].JobID)
	})

	t.Run("refresh replaces the cache with the server list", func(t *testing.T) {
		fs, c := loggedInClient(t)

		fs.jobs = []dto.JobDTO{
			{JobID: "job-9", Company: "Initech", Role: "Dev", Status: "Offer"},
		}

		jobs, err := c.RefreshJobs(context.Background())
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "job-9", jobs[0].JobID)
		assert.Equal(t, jobs, c.Jobs())
	})

	t.Run("update replaces the cached entry", func(t *testing.T) {
		_, c := loggedInClient(t)

		created, err := c.CreateJob(context.Background(), JobForm{Company: "Acme", Role: "Dev", Status: "Applied"})
		require.NoError(t, err)

		updated, err := c.UpdateJob(context.Background(), created.JobID, JobForm{
			Company: "Acme",
			Role:    "Dev",
			Status:  "Interview",
		})
		require.NoError(t, err)
		assert.Equal(t, "Interview", updated.Status)

		jobs := c.Jobs()
		require.Len(t, jobs, 1)
		assert.Equal(t, "Interview", jobs[0].Status)
	})

	t.Run("delete drops the cached entry", func(t *testing.T) {
		_, c := loggedInClient(t)

		created, err := c.CreateJob(context.Background(), JobForm{Company: "Acme", Role: "Dev", Status: "Applied"})
		require.NoError(t, err)

		require.NoError(t, c.DeleteJob(context.Background(), created.JobID))
		assert.Empty(t, c.Jobs())
	})

	t.Run("resume upload is reflected in the server's job", func(t *testing.T) {
		_, c := loggedInClient(t)

		created, err := c.CreateJob(context.Background(), JobForm{
			Company:      "Acme",
			Role:         "Dev",
			Status:       "Applied",
			ResumeName:   "cv.pdf",
			ResumeReader: strings.NewReader("pdf bytes"),
		})
		require.NoError(t, err)
		assert.Equal(t, "/uploads/user-1/cv.pdf", created.ResumeURL)
	})
}

func TestClient_Timeline(t *testing.T) {
	fs, c := loggedInClient(t)

	fs.jobs = []dto.JobDTO{
		{
			JobID:   "job-1",
			Company: "Acme",
			Role:    "Dev",
			Status:  "Offer",
			StatusHistory: []dto.StatusHistoryEntryDTO{
				{Status: "Offer", Timestamp: "2024-03-03T10:00:00Z"},
				{Status: "Applied", Timestamp: "2024-03-01T10:00:00Z"},
				{Status: "Interview", Timestamp: "2024-03-02T10:00:00Z"},
			},
		},
	}
	_, err := c.RefreshJobs(context.Background())
	require.NoError(t, err)

	t.Run("sorts entries ascending by timestamp", func(t *testing.T) {
		timeline, err := c.Timeline("job-1")

		require.NoError(t, err)
		require.Len(t, timeline, 3)
		assert.Equal(t, "Applied", timeline[0].Status)
		assert.Equal(t, "Interview", timeline[1].Status)
		assert.Equal(t, "Offer", timeline[2].Status)
	})

	t.Run("unknown job errors", func(t *testing.T) {
		_, err := c.Timeline("job-404")
		assert.Error(t, err)
	})
}

func TestClient_TimelineConcurrentWithUpdate(t *testing.T) {
	_, c := loggedInClient(t)

	applied := dto.StatusHistoryEntryDTO{Status: "Applied", Timestamp: "2024-03-01T10:00:00Z"}
	created, err := c.CreateJob(context.Background(), JobForm{
		Company:       "Acme",
		Role:          "Dev",
		Status:        "Applied",
		StatusHistory: []dto.StatusHistoryEntryDTO{applied},
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 200; i++ {
			_, err := c.UpdateJob(context.Background(), created.JobID, JobForm{
				Company: "Acme",
				Role:    "Dev",
				Status:  "Interview",
				StatusHistory: []dto.StatusHistoryEntryDTO{
					applied,
					{Status: "Interview", Timestamp: "2024-03-02T10:00:00Z"},
				},
			})
			if err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i := 0; i < 200; i++ {
		timeline, err := c.Timeline(created.JobID)
		require.NoError(t, err)
		require.NotEmpty(t, timeline)
		assert.Equal(t, "Applied", timeline[0].Status)
	}

	require.NoError(t, <-done)
}

func TestClient_Profile(t *testing.T) {
	_, c := loggedInClient(t)

	profile, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, "alice", profile.Username)

	updated, err := c.UpdateProfile(context.Background(), dto.UpdateProfileRequest{
		Bio:    "now a platform engineer",
		Skills: []string{"Go", "Kubernetes"},
	})
	require.NoError(t, err)
	assert.Equal(t, "now a platform engineer", updated.Bio)
	assert.Equal(t, []string{"Go", "Kubernetes"}, updated.Skills)
}
