package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/AyushShukla12112005/trackctl/internal/models"
	"github.com/AyushShukla12112005/trackctl/internal/notify"
)

// Persister saves a partial issue update and returns the confirmed record;
// satisfied by api.Client.
type Persister interface {
	PatchIssue(ctx context.Context, id string, patch map[string]any) (*models.Issue, error)
}

// Toaster surfaces transient, dismissible user notifications; satisfied by
// output.UI.
type Toaster interface {
	Success(format string, a ...any)
	Error(format string, a ...any)
}

// Engine translates a card move into an optimistic store update plus a
// persistence attempt. On success the confirmed record replaces the
// optimistic one and a change signal goes out; on failure the store is
// reverted and the user is told. Errors never escape as panics.
type Engine struct {
	store    *Store
	persist  Persister
	notifier *notify.Notifier
	toasts   Toaster

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine wires an engine to one view's store.
func NewEngine(store *Store, persist Persister, notifier *notify.Notifier, toasts Toaster) *Engine {
	return &Engine{
		store:    store,
		persist:  persist,
		notifier: notifier,
		toasts:   toasts,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-issue lock, creating it on first use. Persists
// for one issue id are serialized so a late response can never overwrite a
// newer optimistic state; different ids stay independent.
func (e *Engine) lockFor(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// Move handles a card dropped on the board. source and dest are status
// columns; indexes are positions within them. Moves within the same column
// are pure reorders: ordering is not a modeled attribute of an issue, so
// nothing is persisted and no call is made.
func (e *Engine) Move(ctx context.Context, issueID string, source, dest models.IssueStatus, sourceIndex, destIndex int) (*models.Issue, error) {
	if source == dest {
		return nil, nil
	}
	if !dest.Valid() {
		return nil, fmt.Errorf("unknown column %q", dest)
	}

	lock := e.lockFor(issueID)
	lock.Lock()
	defer lock.Unlock()

	prev, ok := e.store.ApplyLocal(issueID, Patch{Status: &dest})
	if !ok {
		return nil, fmt.Errorf("issue %s is not on this board", issueID)
	}

	confirmed, err := e.persist.PatchIssue(ctx, issueID, map[string]any{"status": dest})
	if err != nil {
		e.store.Revert(issueID, prev)
		e.toasts.Error("Failed to move issue")
		return nil, err
	}

	e.store.Replace(confirmed)
	e.notifier.Emit(notify.Signal{Kind: notify.KindIssue, Verb: notify.VerbUpdated, ID: issueID})
	e.toasts.Success("Issue moved to %s", dest.Label())
	return confirmed, nil
}
