// Package dashboard re-derives summary views (counts, recent activity,
// overdue lists) from the backend whenever a change signal arrives.
// Aggregates are always recomputed wholesale; they are small, and
// correctness from recomputation beats incremental patching.
package dashboard

import (
	"sort"
	"time"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

// recentLimit caps the recent-activity feed.
const recentLimit = 5

// RecentActivity returns the latest-updated issues, newest first, capped
// at limit.
func RecentActivity(issues []*models.Issue, limit int) []*models.Issue {
	out := make([]*models.Issue, len(issues))
	copy(out, issues)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MyTasks returns the issues assigned to userID, independent of status.
func MyTasks(issues []*models.Issue, userID string) []*models.Issue {
	var out []*models.Issue
	for _, issue := range issues {
		if issue.AssignedTo(userID) {
			out = append(out, issue)
		}
	}
	return out
}

// OverdueTasks returns the issues whose due date is strictly in the past
// and whose status is not done.
func OverdueTasks(issues []*models.Issue, now time.Time) []*models.Issue {
	var out []*models.Issue
	for _, issue := range issues {
		if issue.Overdue(now) {
			out = append(out, issue)
		}
	}
	return out
}

// ProjectProgress returns how much of a project is done as an integer
// percentage. A project with no issues is 0% done, never a division by
// zero.
func ProjectProgress(issues []*models.Issue, projectID string) int {
	total, done := 0, 0
	for _, issue := range issues {
		if issue.Project.ID != projectID {
			continue
		}
		total++
		if issue.Status == models.IssueStatusDone {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

// DeriveStats computes the summary counters locally from full project and
// issue lists, mirroring what the backend aggregate reports.
func DeriveStats(projects []*models.Project, issues []*models.Issue, userID string, now time.Time) models.ProjectStats {
	completed := 0
	for _, p := range projects {
		if p.Status == "completed" {
			completed++
		}
	}
	return models.ProjectStats{
		TotalProjects:     len(projects),
		CompletedProjects: completed,
		MyTasks:           len(MyTasks(issues, userID)),
		Overdue:           len(OverdueTasks(issues, now)),
	}
}

// ProjectIssueCounts returns (done, total) for one project's issues.
func ProjectIssueCounts(issues []*models.Issue, projectID string) (done, total int) {
	for _, issue := range issues {
		if issue.Project.ID != projectID {
			continue
		}
		total++
		if issue.Status == models.IssueStatusDone {
			done++
		}
	}
	return done, total
}
