package models

import "time"

// IssueStatus represents the state of an issue. It is the sole field that
// determines which board column an issue renders in.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in-progress"
	IssueStatusDone       IssueStatus = "done"
)

// StatusOrder lists all statuses in left-to-right board column order.
var StatusOrder = []IssueStatus{IssueStatusOpen, IssueStatusInProgress, IssueStatusDone}

// Valid reports whether s is one of the known statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusDone:
		return true
	}
	return false
}

// Label returns the human-readable column title for the status.
func (s IssueStatus) Label() string {
	switch s {
	case IssueStatusOpen:
		return "To Do"
	case IssueStatusInProgress:
		return "In Progress"
	case IssueStatusDone:
		return "Done"
	}
	return string(s)
}

// IssuePriority represents the urgency of an issue.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "low"
	IssuePriorityMedium IssuePriority = "medium"
	IssuePriorityHigh   IssuePriority = "high"
	IssuePriorityUrgent IssuePriority = "urgent"
)

// Valid reports whether p is one of the known priorities.
func (p IssuePriority) Valid() bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityUrgent:
		return true
	}
	return false
}

// IssueType represents the kind of work an issue tracks.
type IssueType string

const (
	IssueTypeBug     IssueType = "bug"
	IssueTypeFeature IssueType = "feature"
	IssueTypeTask    IssueType = "task"
)

// Valid reports whether t is one of the known types.
func (t IssueType) Valid() bool {
	switch t {
	case IssueTypeBug, IssueTypeFeature, IssueTypeTask:
		return true
	}
	return false
}

// Icon returns the glyph shown on board cards for the type.
func (t IssueType) Icon() string {
	switch t {
	case IssueTypeBug:
		return "🐛"
	case IssueTypeFeature:
		return "✨"
	case IssueTypeTask:
		return "📋"
	}
	return "📝"
}

// Issue represents a tracked unit of work owned by a project. Records are
// fetched from the backend; each view holds its own copy.
type Issue struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Type        IssueType     `json:"type"`
	Priority    IssuePriority `json:"priority"`
	Status      IssueStatus   `json:"status"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Assignee    *UserRef      `json:"assignee,omitempty"`
	CreatedBy   *UserRef      `json:"createdBy,omitempty"`
	Project     ProjectRef    `json:"project"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// AssignedTo reports whether the issue is assigned to the given user.
func (i *Issue) AssignedTo(userID string) bool {
	return userID != "" && i.Assignee != nil && i.Assignee.ID == userID
}

// Overdue reports whether the issue's due date is strictly in the past and
// the issue is not done.
func (i *Issue) Overdue(now time.Time) bool {
	return i.DueDate != nil && i.DueDate.Before(now) && i.Status != IssueStatusDone
}
