// Package activity defines the append-only activity feed entry.
package activity

import "time"

// Action classifies what happened.
type Action string

// Activity actions.
const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionArchived Action = "archived"
	ActionAssigned Action = "assigned"
)

// Activity records one change made by one user against one entity.
type Activity struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Action     Action    `json:"action"`
	EntityType string    `json:"entity_type"` // task, project, user
	EntityID   string    `json:"entity_id"`
	ProjectID  string    `json:"project_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
