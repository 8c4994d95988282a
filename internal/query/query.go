// Package query turns a view's filter selections into the canonical set of
// parameters sent to the issue-listing endpoint. Two views holding identical
// selections always produce identical query strings, so their requests are
// safe to treat as cache-equivalent.
package query

import (
	"net/url"
	"strings"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

// Filter captures one view's issue-listing constraints. Zero values mean
// "no constraint"; the filter lives only in the view's transient state.
type Filter struct {
	Search     string
	ProjectID  string
	Status     models.IssueStatus
	Priority   models.IssuePriority
	Type       models.IssueType
	AssigneeID string
}

// Values maps the filter onto /issues query parameters. Parameters whose
// value is empty are omitted entirely (never sent as "status="), and
// free-text search is trimmed before encoding.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("search", s)
	}
	if f.ProjectID != "" {
		v.Set("project", f.ProjectID)
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		v.Set("priority", string(f.Priority))
	}
	if f.Type != "" {
		v.Set("type", string(f.Type))
	}
	if f.AssigneeID != "" {
		v.Set("assignee", f.AssigneeID)
	}
	return v
}

// Encode returns the canonical query string. url.Values sorts keys, so the
// output is deterministic for a given selection.
func (f Filter) Encode() string {
	return f.Values().Encode()
}

// IsZero reports whether the filter applies no constraints.
func (f Filter) IsZero() bool {
	return len(f.Values()) == 0
}
