package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AyushShukla12112005/trackctl/internal/models"
	"github.com/AyushShukla12112005/trackctl/internal/notify"
	"github.com/AyushShukla12112005/trackctl/internal/query"
)

// Fetcher supplies the backend reads a summary recompute needs; satisfied
// by api.Client.
type Fetcher interface {
	ListProjects(ctx context.Context) ([]*models.Project, error)
	ListIssues(ctx context.Context, f query.Filter) ([]*models.Issue, error)
	ProjectStats(ctx context.Context) (*models.ProjectStats, error)
	ProjectActivity(ctx context.Context) ([]*models.Issue, error)
}

// Snapshot is one consistent summary state. Recomputes build a whole new
// snapshot and swap it in; nothing is patched in place.
type Snapshot struct {
	Stats    models.ProjectStats
	Projects []*models.Project
	Issues   []*models.Issue
	Recent   []*models.Issue
	At       time.Time
}

// Controller keeps a summary snapshot current by recomputing it whenever
// an issue or project change signal arrives. It holds no per-record
// state; aggregates are cheap enough to rebuild from scratch every time.
type Controller struct {
	fetch    Fetcher
	notifier *notify.Notifier
	userID   string
	log      *logrus.Logger

	mu      sync.Mutex
	snap    Snapshot
	cancels []func()
	closed  bool

	// onUpdate, when set, runs after every snapshot swap. Watch mode
	// hangs its re-render here.
	onUpdate func(Snapshot)
}

// NewController creates an unmounted controller for the given user. Call
// Mount to subscribe and Recompute to populate the first snapshot. A nil
// notifier is fine for one-shot recomputes that never mount.
func NewController(fetch Fetcher, notifier *notify.Notifier, userID string, log *logrus.Logger) *Controller {
	return &Controller{fetch: fetch, notifier: notifier, userID: userID, log: log}
}

// OnUpdate registers a callback invoked with each new snapshot. Must be
// called before Mount.
func (c *Controller) OnUpdate(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// Mount subscribes to issue and project change signals. Each signal
// triggers a full recompute; the signal payload is only a hint that
// something changed, never a source of record data.
func (c *Controller) Mount(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notifier == nil || c.closed || len(c.cancels) > 0 {
		return
	}

	refetch := func(sig notify.Signal) {
		if err := c.Recompute(ctx); err != nil {
			c.log.Warnf("dashboard: recompute after %s %s: %v", sig.Kind, sig.Verb, err)
		}
	}
	c.cancels = append(c.cancels,
		c.notifier.Subscribe(notify.KindIssue, refetch),
		c.notifier.Subscribe(notify.KindProject, refetch),
	)
}

// Close unsubscribes and marks the controller dead. Recomputes already in
// flight finish their fetches but their results are discarded, so a slow
// response can never resurrect a torn-down view.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
}

// Recompute re-fetches everything the summary shows and swaps in a new
// snapshot. A piece that fails to fetch keeps its previous value; the
// rest still refresh.
func (c *Controller) Recompute(ctx context.Context) error {
	c.mu.Lock()
	prev := c.snap
	c.mu.Unlock()

	next := Snapshot{
		Stats:    prev.Stats,
		Projects: prev.Projects,
		Issues:   prev.Issues,
		Recent:   prev.Recent,
		At:       time.Now().UTC(),
	}
	var firstErr error

	if projects, err := c.fetch.ListProjects(ctx); err != nil {
		firstErr = err
	} else {
		next.Projects = projects
	}
	issuesOK := false
	if issues, err := c.fetch.ListIssues(ctx, query.Filter{}); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		next.Issues = issues
		issuesOK = true
	}
	if stats, err := c.fetch.ProjectStats(ctx); err != nil {
		if issuesOK {
			// The backend aggregate is a convenience; the same numbers
			// fall out of the full lists.
			c.log.Debugf("dashboard: stats endpoint failed, deriving locally: %v", err)
			next.Stats = DeriveStats(next.Projects, next.Issues, c.userID, time.Now())
		} else if firstErr == nil {
			firstErr = err
		}
	} else {
		next.Stats = *stats
	}
	if recent, err := c.fetch.ProjectActivity(ctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		next.Recent = RecentActivity(recent, recentLimit)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return firstErr
	}
	c.snap = next
	fn := c.onUpdate
	c.mu.Unlock()

	if fn != nil {
		fn(next)
	}
	return firstErr
}

// Snapshot returns the current summary state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}
