package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyushShukla12112005/trackctl/internal/models"
	"github.com/AyushShukla12112005/trackctl/internal/notify"
	"github.com/AyushShukla12112005/trackctl/internal/query"
)

type fakeFetcher struct {
	mu sync.Mutex

	projects    []*models.Project
	issues      []*models.Issue
	stats       *models.ProjectStats
	activity    []*models.Issue
	projectsErr error
	issuesErr   error
	statsErr    error
	activityErr error

	recomputes int
}

func (f *fakeFetcher) ListProjects(context.Context) ([]*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recomputes++
	return f.projects, f.projectsErr
}

func (f *fakeFetcher) ListIssues(context.Context, query.Filter) ([]*models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issues, f.issuesErr
}

func (f *fakeFetcher) ProjectStats(context.Context) (*models.ProjectStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, f.statsErr
}

func (f *fakeFetcher) ProjectActivity(context.Context) ([]*models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activity, f.activityErr
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{
		projects: []*models.Project{{ID: "p1", Name: "Apollo"}},
		issues: []*models.Issue{
			{ID: "i1", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusDone},
			{ID: "i2", Project: models.ProjectRef{ID: "p1"}, Status: models.IssueStatusOpen},
		},
		stats: &models.ProjectStats{TotalProjects: 1, MyTasks: 2},
		activity: []*models.Issue{
			{ID: "i1", UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
			{ID: "i2", UpdatedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
		},
	}
}

func TestController_Recompute(t *testing.T) {
	fetch := newFetcher()
	c := NewController(fetch, notify.NewInProcess(), "u1", quietLog())

	require.NoError(t, c.Recompute(context.Background()))

	snap := c.Snapshot()
	assert.Len(t, snap.Projects, 1)
	assert.Len(t, snap.Issues, 2)
	assert.Equal(t, 2, snap.Stats.MyTasks)
	require.Len(t, snap.Recent, 2)
	assert.Equal(t, "i2", snap.Recent[0].ID, "newest first")
}

func TestController_PartialFailureKeepsPreviousPiece(t *testing.T) {
	fetch := newFetcher()
	c := NewController(fetch, notify.NewInProcess(), "u1", quietLog())
	require.NoError(t, c.Recompute(context.Background()))

	fetch.mu.Lock()
	fetch.statsErr = errors.New("backend down")
	fetch.issuesErr = errors.New("backend down")
	fetch.projects = append(fetch.projects, &models.Project{ID: "p2", Name: "Borealis"})
	fetch.mu.Unlock()

	err := c.Recompute(context.Background())
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Len(t, snap.Projects, 2, "pieces that fetched fine still refresh")
	assert.Equal(t, 2, snap.Stats.MyTasks, "failed piece keeps its previous value")
	assert.Len(t, snap.Issues, 2, "failed piece keeps its previous value")
}

func TestController_StatsFailureDerivesFromIssues(t *testing.T) {
	fetch := newFetcher()
	yesterday := time.Now().Add(-24 * time.Hour)

	fetch.statsErr = errors.New("aggregate endpoint down")
	fetch.issues = []*models.Issue{
		{ID: "i1", Assignee: &models.UserRef{ID: "u1"}, Status: models.IssueStatusOpen},
		{ID: "i2", Assignee: &models.UserRef{ID: "u1"}, Status: models.IssueStatusDone},
		{ID: "i3", DueDate: &yesterday, Status: models.IssueStatusInProgress},
	}
	c := NewController(fetch, notify.NewInProcess(), "u1", quietLog())

	require.NoError(t, c.Recompute(context.Background()), "a derivable aggregate is not a failure")

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.Stats.MyTasks)
	assert.Equal(t, 1, snap.Stats.Overdue)
	assert.Equal(t, 1, snap.Stats.TotalProjects)
}

func TestController_SignalTriggersRecompute(t *testing.T) {
	fetch := newFetcher()
	notifier := notify.NewInProcess()
	c := NewController(fetch, notifier, "u1", quietLog())

	updates := make(chan Snapshot, 4)
	c.OnUpdate(func(s Snapshot) { updates <- s })
	c.Mount(context.Background())
	defer c.Close()

	notifier.Emit(notify.Signal{Kind: notify.KindIssue, Verb: notify.VerbUpdated, ID: "i1"})

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no recompute after an issue signal")
	}
}

func TestController_CloseUnsubscribes(t *testing.T) {
	fetch := newFetcher()
	notifier := notify.NewInProcess()
	c := NewController(fetch, notifier, "u1", quietLog())
	c.Mount(context.Background())
	c.Close()

	notifier.Emit(notify.Signal{Kind: notify.KindProject, Verb: notify.VerbCreated, ID: "p9"})

	fetch.mu.Lock()
	defer fetch.mu.Unlock()
	assert.Equal(t, 0, fetch.recomputes, "signals after teardown are ignored")
}

func TestController_RecomputeAfterCloseDiscarded(t *testing.T) {
	fetch := newFetcher()
	c := NewController(fetch, notify.NewInProcess(), "u1", quietLog())
	require.NoError(t, c.Recompute(context.Background()))
	before := c.Snapshot()

	c.Close()
	fetch.mu.Lock()
	fetch.projects = nil
	fetch.mu.Unlock()

	_ = c.Recompute(context.Background())
	assert.Equal(t, before.Projects, c.Snapshot().Projects, "late results never land on a closed view")
}
