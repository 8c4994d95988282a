package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_IssueRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	issues := []*models.Issue{
		{ID: "i1", Title: "Fix login crash", Status: models.IssueStatusOpen,
			Priority: models.IssuePriorityHigh, Type: models.IssueTypeBug,
			DueDate: &due, Project: models.ProjectRef{ID: "p1", Name: "Apollo"}},
		{ID: "i2", Title: "Polish dashboard", Status: models.IssueStatusDone,
			Project: models.ProjectRef{ID: "p1"}},
		{ID: "i3", Title: "Other project", Status: models.IssueStatusOpen,
			Project: models.ProjectRef{ID: "p2"}},
	}
	require.NoError(t, c.PutIssues(ctx, issues))

	got, fetchedAt, err := c.IssuesForProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, fetchedAt.IsZero())
	assert.Equal(t, "Fix login crash", got[0].Title)
	require.NotNil(t, got[0].DueDate)
	assert.True(t, got[0].DueDate.Equal(due))
	assert.Equal(t, models.IssueTypeBug, got[0].Type)
}

func TestCache_PutIssuesUpserts(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	issue := &models.Issue{ID: "i1", Title: "Before", Status: models.IssueStatusOpen,
		Project: models.ProjectRef{ID: "p1"}}
	require.NoError(t, c.PutIssues(ctx, []*models.Issue{issue}))

	issue.Title = "After"
	issue.Status = models.IssueStatusDone
	require.NoError(t, c.PutIssues(ctx, []*models.Issue{issue}))

	got, _, err := c.IssuesForProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "After", got[0].Title)
	assert.Equal(t, models.IssueStatusDone, got[0].Status)
}

func TestCache_ReplaceProjectIssuesDropsRemoved(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutIssues(ctx, []*models.Issue{
		{ID: "i1", Status: models.IssueStatusOpen, Project: models.ProjectRef{ID: "p1"}},
		{ID: "i2", Status: models.IssueStatusOpen, Project: models.ProjectRef{ID: "p1"}},
		{ID: "other", Status: models.IssueStatusOpen, Project: models.ProjectRef{ID: "p2"}},
	}))

	require.NoError(t, c.ReplaceProjectIssues(ctx, "p1", []*models.Issue{
		{ID: "i2", Status: models.IssueStatusDone, Project: models.ProjectRef{ID: "p1"}},
	}))

	got, _, err := c.IssuesForProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "i2", got[0].ID)

	other, _, err := c.IssuesForProject(ctx, "p2")
	require.NoError(t, err)
	assert.Len(t, other, 1, "replacing one project never touches another")
}

func TestCache_EmptyProjectIsNotAnError(t *testing.T) {
	c := openTestCache(t)
	got, fetchedAt, err := c.IssuesForProject(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, fetchedAt.IsZero())
}

func TestCache_ProjectsRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutProjects(ctx, []*models.Project{
		{ID: "p1", Name: "Apollo", Status: "active"},
		{ID: "p2", Name: "Borealis"},
	}))
	require.NoError(t, c.PutProjects(ctx, []*models.Project{
		{ID: "p1", Name: "Apollo", Status: "active"},
	}))

	got, fetchedAt, err := c.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "put replaces the whole list")
	assert.Equal(t, "Apollo", got[0].Name)
	assert.False(t, fetchedAt.IsZero())
}
