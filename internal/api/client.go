// Package api is the REST client for the tracker backend. The backend is
// the sole source of truth; everything here is request/response plumbing
// plus the error taxonomy the views recover from.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/AyushShukla12112005/trackctl/internal/models"
	"github.com/AyushShukla12112005/trackctl/internal/query"
)

// TokenSource supplies the current bearer token, or "" when logged out.
type TokenSource func() string

// Client talks to the tracker backend over HTTP+JSON.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	token   TokenSource
	log     *logrus.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenSource attaches a bearer-token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// WithLogger routes diagnostics to the given logger.
func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the backend at baseURL (e.g.
// "http://localhost:5000/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		token:   func() string { return "" },
		log:     logrus.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return c
}

// isAuthAttempt reports whether the path is a login/register call, whose
// 401s are ordinary failures rather than a session teardown.
func isAuthAttempt(path string) bool {
	return strings.HasPrefix(path, "/auth/login") || strings.HasPrefix(path, "/auth/register")
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 400 {
			return nil, c.statusError(method, path, u, resp.StatusCode, data)
		}
		return data, nil
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{"method": method, "path": path}).Warnf("request failed: %v", err)
		return c.classify(method, u, err)
	}

	if out == nil {
		return nil
	}
	data := result.([]byte)
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// statusError maps an HTTP failure status onto the error taxonomy.
func (c *Client) statusError(method, path, u string, status int, body []byte) error {
	if status == http.StatusUnauthorized && !isAuthAttempt(path) {
		return &AuthError{URL: u}
	}

	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	if method == http.MethodGet {
		return &FetchError{URL: u, StatusCode: status}
	}
	return &PersistError{URL: u, StatusCode: status, Message: payload.Message}
}

// classify wraps transport-level failures (timeouts, refused connections,
// open breaker). Status-derived errors pass through untouched.
func (c *Client) classify(method, u string, err error) error {
	var fe *FetchError
	var pe *PersistError
	var ae *AuthError
	if errors.As(err, &fe) || errors.As(err, &pe) || errors.As(err, &ae) {
		return err
	}
	if method == http.MethodGet {
		return &FetchError{URL: u, Err: err}
	}
	return &PersistError{URL: u, Err: err}
}

// --- Auth ---

// LoginResult is the payload of a successful login or registration.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "password": newPassword}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", nil, body, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, name string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPatch, "/auth/profile", nil, map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) error {
	body := map[string]string{"currentPassword": current, "newPassword": newPassword}
	return c.do(ctx, http.MethodPatch, "/auth/change-password", nil, body, nil)
}

// --- Projects ---

// CreateProjectRequest is the body for project creation and update.
type CreateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	ProjectLead string     `json:"projectLead,omitempty"`
	Members     []string   `json:"members,omitempty"`
}

func (c *Client) ListProjects(ctx context.Context) ([]*models.Project, error) {
	var out []*models.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, req CreateProjectRequest) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+id, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil, nil)
}

func (c *Client) InviteMember(ctx context.Context, projectID, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/projects/"+projectID+"/invite", nil, body, nil)
}

// ProjectStats fetches the dashboard summary aggregate.
func (c *Client) ProjectStats(ctx context.Context) (*models.ProjectStats, error) {
	var out models.ProjectStats
	if err := c.do(ctx, http.MethodGet, "/projects/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProjectActivity fetches the recent-activity issue feed.
func (c *Client) ProjectActivity(ctx context.Context) ([]*models.Issue, error) {
	var out []*models.Issue
	if err := c.do(ctx, http.MethodGet, "/projects/activity", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Issues ---

// CreateIssueRequest is the body for issue creation and full update.
type CreateIssueRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Type        models.IssueType     `json:"type"`
	Priority    models.IssuePriority `json:"priority"`
	Status      models.IssueStatus   `json:"status,omitempty"`
	ProjectID   string               `json:"project"`
	AssigneeID  string               `json:"assignee,omitempty"`
	DueDate     *time.Time           `json:"dueDate,omitempty"`
}

func (c *Client) ListIssues(ctx context.Context, f query.Filter) ([]*models.Issue, error) {
	var out []*models.Issue
	if err := c.do(ctx, http.MethodGet, "/issues", f.Values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignedIssues lists issues assigned to the current user.
func (c *Client) AssignedIssues(ctx context.Context) ([]*models.Issue, error) {
	var out []*models.Issue
	if err := c.do(ctx, http.MethodGet, "/issues/assigned", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	var out models.Issue
	if err := c.do(ctx, http.MethodGet, "/issues/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateIssue(ctx context.Context, req CreateIssueRequest) (*models.Issue, error) {
	var out models.Issue
	if err := c.do(ctx, http.MethodPost, "/issues", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateIssue(ctx context.Context, id string, req CreateIssueRequest) (*models.Issue, error) {
	var out models.Issue
	if err := c.do(ctx, http.MethodPut, "/issues/"+id, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchIssue applies a partial update and returns the confirmed record,
// correcting any fields the optimistic patch did not anticipate.
func (c *Client) PatchIssue(ctx context.Context, id string, patch map[string]any) (*models.Issue, error) {
	var out models.Issue
	if err := c.do(ctx, http.MethodPatch, "/issues/"+id, nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteIssue(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/issues/"+id, nil, nil, nil)
}

func (c *Client) ListComments(ctx context.Context, issueID string) ([]*models.Comment, error) {
	var out []*models.Comment
	if err := c.do(ctx, http.MethodGet, "/issues/"+issueID+"/comments", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddComment(ctx context.Context, issueID, text string) (*models.Comment, error) {
	var out models.Comment
	if err := c.do(ctx, http.MethodPost, "/issues/"+issueID+"/comments", nil, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Users ---

func (c *Client) ListUsers(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchUsers(ctx context.Context, q string) ([]*models.User, error) {
	params := url.Values{}
	params.Set("q", q)
	var out []*models.User
	if err := c.do(ctx, http.MethodGet, "/users/search", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
