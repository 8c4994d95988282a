// Package board implements the board synchronization model: a per-view
// issue store with optimistic local mutations, and the engine that turns a
// card move into a persisted status change with rollback on failure.
package board

import (
	"context"
	"sync"

	"github.com/AyushShukla12112005/trackctl/internal/models"
	"github.com/AyushShukla12112005/trackctl/internal/query"
)

// Lister fetches issue listings; satisfied by api.Client.
type Lister interface {
	ListIssues(ctx context.Context, f query.Filter) ([]*models.Issue, error)
}

// Patch is a partial issue update applied optimistically for instant
// feedback, ahead of server confirmation.
type Patch struct {
	Status   *models.IssueStatus
	Priority *models.IssuePriority
	Assignee *models.UserRef
}

func (p Patch) apply(issue *models.Issue) Patch {
	var prev Patch
	if p.Status != nil {
		old := issue.Status
		prev.Status = &old
		issue.Status = *p.Status
	}
	if p.Priority != nil {
		old := issue.Priority
		prev.Priority = &old
		issue.Priority = *p.Priority
	}
	if p.Assignee != nil {
		old := issue.Assignee
		if old != nil {
			cp := *old
			prev.Assignee = &cp
		} else {
			prev.Assignee = &models.UserRef{}
		}
		if p.Assignee.ID == "" {
			issue.Assignee = nil
		} else {
			cp := *p.Assignee
			issue.Assignee = &cp
		}
	}
	return prev
}

// Store holds the list of issues one view currently renders. Views never
// share a store; each fetches and owns its own copy. The store itself does
// no network or disk I/O beyond delegating listings to the Lister.
type Store struct {
	lister Lister

	mu     sync.RWMutex
	issues []*models.Issue
	byID   map[string]*models.Issue
}

// NewStore creates an empty store backed by the given lister.
func NewStore(lister Lister) *Store {
	return &Store{
		lister: lister,
		byID:   make(map[string]*models.Issue),
	}
}

// Load replaces the held list with a fresh fetch through the filter
// composer, clearing any optimistic state along with it. On error the
// previous list is kept; the view degrades to what it has.
func (s *Store) Load(ctx context.Context, f query.Filter) error {
	issues, err := s.lister.ListIssues(ctx, f)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = make([]*models.Issue, 0, len(issues))
	s.byID = make(map[string]*models.Issue, len(issues))
	for _, issue := range issues {
		cp := *issue
		s.issues = append(s.issues, &cp)
		s.byID[cp.ID] = &cp
	}
	return nil
}

// ApplyLocal merges patch into the record matching id, in memory only, and
// returns the previous values of the patched fields for a later Revert.
// ok is false when the issue is not held by this store.
func (s *Store) ApplyLocal(id string, patch Patch) (prev Patch, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.byID[id]
	if !ok {
		return Patch{}, false
	}
	return patch.apply(issue), true
}

// Revert restores a record to its pre-optimistic values.
func (s *Store) Revert(id string, prev Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.byID[id]
	if !ok {
		return false
	}
	prev.apply(issue)
	return true
}

// Replace overwrites one record with a freshly confirmed server copy,
// correcting any fields the optimistic patch did not anticipate.
func (s *Store) Replace(confirmed *models.Issue) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[confirmed.ID]
	if !ok {
		return false
	}
	cp := *confirmed
	*old = cp
	return true
}

// Get returns a copy of the record matching id.
func (s *Store) Get(id string) (models.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.byID[id]
	if !ok {
		return models.Issue{}, false
	}
	return *issue, true
}

// Issues returns a snapshot of the held list.
func (s *Store) Issues() []*models.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		cp := *issue
		out = append(out, &cp)
	}
	return out
}

// ByStatus returns a snapshot of the issues in one board column.
func (s *Store) ByStatus(status models.IssueStatus) []*models.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Issue
	for _, issue := range s.issues {
		if issue.Status == status {
			cp := *issue
			out = append(out, &cp)
		}
	}
	return out
}

// Len returns the number of held issues.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.issues)
}
