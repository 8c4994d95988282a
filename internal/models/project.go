package models

import "time"

// Project represents a named container of issues with a member list.
// The member set determines who may be offered as an assignee.
type Project struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	ProjectLead *UserRef   `json:"projectLead,omitempty"`
	Members     []UserRef  `json:"members,omitempty"`
	CreatedBy   *UserRef   `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ProjectStats is the dashboard summary the backend aggregates.
type ProjectStats struct {
	TotalProjects     int `json:"totalProjects"`
	CompletedProjects int `json:"completedProjects"`
	MyTasks           int `json:"myTasks"`
	Overdue           int `json:"overdue"`
}
