package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

func issueAt(id string, updated time.Time) *models.Issue {
	return &models.Issue{ID: id, UpdatedAt: updated}
}

func TestRecentActivity_NewestFirstCapped(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issues := []*models.Issue{
		issueAt("a", base.Add(1*time.Hour)),
		issueAt("b", base.Add(6*time.Hour)),
		issueAt("c", base.Add(3*time.Hour)),
		issueAt("d", base.Add(5*time.Hour)),
		issueAt("e", base.Add(2*time.Hour)),
		issueAt("f", base.Add(4*time.Hour)),
	}

	got := RecentActivity(issues, 5)
	ids := make([]string, len(got))
	for i, issue := range got {
		ids[i] = issue.ID
	}
	assert.Equal(t, []string{"b", "d", "f", "c", "e"}, ids)
	assert.Equal(t, "a", issues[0].ID, "input order untouched")
}

func TestMyTasks_AnyStatus(t *testing.T) {
	me := &models.UserRef{ID: "u1"}
	other := &models.UserRef{ID: "u2"}
	issues := []*models.Issue{
		{ID: "a", Assignee: me, Status: models.IssueStatusOpen},
		{ID: "b", Assignee: me, Status: models.IssueStatusDone},
		{ID: "c", Assignee: other, Status: models.IssueStatusOpen},
		{ID: "d", Assignee: nil, Status: models.IssueStatusOpen},
	}

	got := MyTasks(issues, "u1")
	assert.Len(t, got, 2, "done issues still count as mine")
}

func TestOverdueTasks(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	issues := []*models.Issue{
		{ID: "late", DueDate: &yesterday, Status: models.IssueStatusInProgress},
		{ID: "late-done", DueDate: &yesterday, Status: models.IssueStatusDone},
		{ID: "future", DueDate: &tomorrow, Status: models.IssueStatusOpen},
		{ID: "no-due", Status: models.IssueStatusOpen},
	}

	got := OverdueTasks(issues, now)
	assert.Len(t, got, 1)
	assert.Equal(t, "late", got[0].ID, "done issues are never overdue, future dates are not yet")
}

func TestProjectProgress(t *testing.T) {
	issues := []*models.Issue{
		{ID: "a", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusDone},
		{ID: "b", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusOpen},
		{ID: "c", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusOpen},
		{ID: "d", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusInProgress},
		{ID: "e", Project: models.ProjectRef{ID: "p2"}, Status: models.IssueStatusDone},
	}

	assert.Equal(t, 25, ProjectProgress(issues, "p1"))
	assert.Equal(t, 100, ProjectProgress(issues, "p2"))
	assert.Equal(t, 0, ProjectProgress(issues, "empty"), "no issues means zero percent, not a crash")
}

func TestDeriveStats(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	projects := []*models.Project{
		{ID: "p1", Status: "active"},
		{ID: "p2", Status: "completed"},
	}
	issues := []*models.Issue{
		{ID: "a", Assignee: &models.UserRef{ID: "u1"}, Status: models.IssueStatusOpen},
		{ID: "b", Assignee: &models.UserRef{ID: "u1"}, Status: models.IssueStatusDone},
		{ID: "c", DueDate: &yesterday, Status: models.IssueStatusOpen},
	}

	stats := DeriveStats(projects, issues, "u1", now)
	assert.Equal(t, 2, stats.TotalProjects)
	assert.Equal(t, 1, stats.CompletedProjects)
	assert.Equal(t, 2, stats.MyTasks)
	assert.Equal(t, 1, stats.Overdue)
}

func TestProjectIssueCounts(t *testing.T) {
	issues := []*models.Issue{
		{ID: "a", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusDone},
		{ID: "b", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusOpen},
	}
	done, total := ProjectIssueCounts(issues, "p1")
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, total)
}
