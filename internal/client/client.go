// Package client is a typed client for the job tracker API. It mirrors the
// browser's data layer: an explicit session object holding the bearer token
// plus an in-memory copy of the job list. The server response is the sole
// source of truth when the cache is reconciled after a mutation; the client
// never invents identifiers or predicts server state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/dto"
)

// ErrNoSession is returned by calls that need a logged-in session.
var ErrNoSession = errors.New("no active session")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to one API server on behalf of at most one logged-in user.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	token  string
	userID string
	jobs   []dto.JobDTO
}

// New creates a client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// UserID returns the logged-in user id, or "" without a session.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/register", body, nil, false)
}

// Login authenticates and starts a session. Any cached state from a
// previous session is discarded.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}

	var resp dto.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &resp, false); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = resp.Token
	c.userID = resp.UserID
	c.jobs = nil

	return nil
}

// Logout invalidates the session and the cached job list.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.userID = ""
	c.jobs = nil
}

// Jobs returns a copy of the cached job list, newest first.
func (c *Client) Jobs() []dto.JobDTO {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]dto.JobDTO, len(c.jobs))
	copy(out, c.jobs)
	return out
}

// RefreshJobs fetches the job list from the server and replaces the cache.
// On failure the existing cache is left untouched.
func (c *Client) RefreshJobs(ctx context.Context) ([]dto.JobDTO, error) {
	var jobs []dto.JobDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/jobs", nil, &jobs, true); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs = jobs

	out := make([]dto.JobDTO, len(jobs))
	copy(out, jobs)
	return out, nil
}

// JobForm is the editable state of a job sent on create and update.
type JobForm struct {
	Company       string
	Role          string
	Status        string
	StatusHistory []dto.StatusHistoryEntryDTO

	// Resume, when set, attaches a resume file to the request.
	ResumeName   string
	ResumeReader io.Reader
}

// CreateJob creates a job and prepends the server's version of it to the
// cached list (the list order is creation time descending).
func (c *Client) CreateJob(ctx context.Context, form JobForm) (*dto.JobDTO, error) {
	var resp dto.JobResponse
	if err := c.doMultipart(ctx, http.MethodPost, "/api/jobs", form, &resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs = append([]dto.JobDTO{resp.Job}, c.jobs...)

	return &resp.Job, nil
}

// UpdateJob updates a job and replaces its cached entry with the server's
// version.
func (c *Client) UpdateJob(ctx context.Context, jobID string, form JobForm) (*dto.JobDTO, error) {
	var resp dto.JobResponse
	if err := c.doMultipart(ctx, http.MethodPut, "/api/jobs/"+jobID, form, &resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.jobs {
		if c.jobs[i].JobID == resp.Job.JobID {
			c.jobs[i] = resp.Job
			break
		}
	}

	return &resp.Job, nil
}

// DeleteJob deletes a job and drops it from the cache.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/jobs/"+jobID, nil, nil, true); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.jobs {
		if c.jobs[i].JobID == jobID {
			c.jobs = append(c.jobs[:i], c.jobs[i+1:]...)
			break
		}
	}

	return nil
}

// Timeline returns the cached job's status history sorted ascending by
// timestamp, the order the timeline view renders it in.
func (c *Client) Timeline(jobID string) ([]dto.StatusHistoryEntryDTO, error) {
	c.mu.Lock()
	var entries []dto.StatusHistoryEntryDTO
	found := false
	for i := range c.jobs {
		if c.jobs[i].JobID == jobID {
			// Copied under the lock: a concurrent mutation may replace this
			// cache entry at any time.
			entries = append([]dto.StatusHistoryEntryDTO(nil), c.jobs[i].StatusHistory...)
			found = true
			break
		}
	}
	c.mu.Unlock()

	if !found {
		return nil, fmt.Errorf("job %s not in cached list", jobID)
	}

	history, err := dto.ParseHistory(entries)
	if err != nil {
		return nil, err
	}

	timeline := history.Timeline()
	out := make([]dto.StatusHistoryEntryDTO, len(timeline))
	for i, entry := range timeline {
		out[i] = dto.StatusHistoryEntryDTO{
			Status:    string(entry.Status),
			Timestamp: entry.Timestamp.Format(time.RFC3339Nano),
		}
	}

	return out, nil
}

// Profile fetches the logged-in user's profile.
func (c *Client) Profile(ctx context.Context) (*dto.UserDTO, error) {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID == "" {
		return nil, ErrNoSession
	}

	var user dto.UserDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile/"+userID, nil, &user, true); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateProfile replaces the logged-in user's profile with the given state.
func (c *Client) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (*dto.UserDTO, error) {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID == "" {
		return nil, ErrNoSession
	}

	var resp dto.ProfileResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/profile/"+userID, req, &resp, true); err != nil {
		return nil, err
	}

	return &resp.User, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out, authed)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, form JobForm, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"company": form.Company,
		"role":    form.Role,
		"status":  form.Status,
	}
	if form.StatusHistory != nil {
		history, err := json.Marshal(form.StatusHistory)
		if err != nil {
			return fmt.Errorf("failed to marshal status history: %w", err)
		}
		fields["statusHistory"] = string(history)
	}

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}

	if form.ResumeReader != nil {
		part, err := w.CreateFormFile("resume", form.ResumeName)
		if err != nil {
			return fmt.Errorf("failed to create resume part: %w", err)
		}
		if _, err := io.Copy(part, form.ResumeReader); err != nil {
			return fmt.Errorf("failed to write resume part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, out, true)
}

func (c *Client) do(req *http.Request, out interface{}, authed bool) error {
	if authed {
		c.mu.Lock()
		token := c.token
		c.mu.Unlock()
		if token == "" {
			return ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(data)}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &msg) == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
