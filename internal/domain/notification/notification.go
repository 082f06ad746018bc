// Package notification defines user notifications.
package notification

import "time"

// Type classifies a notification.
type Type string

// Notification types.
const (
	TypeTaskAssigned  Type = "task_assigned"
	TypeStatusChanged Type = "status_changed"
	TypeProjectAdded  Type = "project_added"
)

// Notification is a message delivered to a single user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	EntityID  string    `json:"entity_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
