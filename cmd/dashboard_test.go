package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyushShukla12112005/trackctl/internal/api"
	"github.com/AyushShukla12112005/trackctl/internal/models"
)

func TestDashboard_PartialFailureStillRendersSnapshot(t *testing.T) {
	out, errOut := loginForTest(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]*models.Project{{ID: "p1", Name: "Apollo", Status: "active"}})
	})
	mux.HandleFunc("/issues", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]*models.Issue{
			{ID: "i1", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusDone},
			{ID: "i2", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusOpen},
		})
	})
	mux.HandleFunc("/projects/stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.ProjectStats{TotalProjects: 1})
	})
	mux.HandleFunc("/projects/activity", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client = api.New(srv.URL,
		api.WithTokenSource(func() string { return "tok" }),
		api.WithLogger(log),
	)
	dashboardWatch = false

	require.NoError(t, dashboardRun(context.Background()))
	assert.Contains(t, out.String(), "Apollo", "pieces that fetched fine still render")
	assert.Contains(t, out.String(), "1/2", "progress is derived from the issue list")
	assert.Contains(t, errOut.String(), "could not be fetched")
}
