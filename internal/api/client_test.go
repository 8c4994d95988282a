package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyushShukla12112005/trackctl/internal/models"
	"github.com/AyushShukla12112005/trackctl/internal/query"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithTokenSource(func() string { return "tok123" }))
}

func TestDo_AttachesBearerTokenAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode([]*models.Project{})
	})

	_, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestListIssues_ForwardsFilterParams(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]*models.Issue{})
	})

	f := query.Filter{Search: "  login bug  ", Priority: models.IssuePriorityHigh}
	_, err := c.ListIssues(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "priority=high&search=login+bug", gotQuery)
}

func TestDo_Unauthorized_IsAuthError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuth(err))
}

func TestLogin_Unauthorized_IsPersistError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})

	_, err := c.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.False(t, IsAuth(err), "a failed login is an ordinary failure, not a session teardown")
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestDo_ReadFailure_IsFetchError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, IsFetch(err))
}

func TestDo_WriteFailure_IsPersistError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "title is required"})
	})

	_, err := c.CreateIssue(context.Background(), CreateIssueRequest{ProjectID: "p1"})
	require.Error(t, err)
	assert.False(t, IsFetch(err))
	assert.Contains(t, err.Error(), "title is required")
}

func TestPatchIssue_ReturnsConfirmedRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, "done", patch["status"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"_id":     "i1",
			"title":   "Fix crash",
			"status":  "done",
			"type":    "bug",
			"project": "p1",
		})
	})

	issue, err := c.PatchIssue(context.Background(), "i1", map[string]any{"status": "done"})
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusDone, issue.Status)
	assert.Equal(t, "p1", issue.Project.ID)
}

func TestRefUnmarshal_StringOrObject(t *testing.T) {
	raw := `{
		"_id": "i2",
		"title": "Polish dashboard",
		"status": "open",
		"type": "task",
		"assignee": {"_id": "u1", "name": "Ada"},
		"project": {"_id": "p1", "name": "Tracker"}
	}`
	var issue models.Issue
	require.NoError(t, json.Unmarshal([]byte(raw), &issue))
	assert.Equal(t, "u1", issue.Assignee.ID)
	assert.Equal(t, "Tracker", issue.Project.Name)

	raw = `{"_id": "i3", "title": "Bare refs", "status": "open", "type": "task", "assignee": "u2", "project": "p2"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &issue))
	assert.Equal(t, "u2", issue.Assignee.ID)
	assert.Equal(t, "p2", issue.Project.ID)
}
