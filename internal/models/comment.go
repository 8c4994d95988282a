package models

import "time"

// Comment is a discussion entry on an issue.
type Comment struct {
	ID        string    `json:"_id"`
	Text      string    `json:"text"`
	Author    UserRef   `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}
