// Package task defines the task entity.
package task

import "time"

// Status is a task workflow state.
type Status string

// Task statuses.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Priority is a task urgency level.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Task is a unit of work inside a project.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatorID   string     `json:"creator_id"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Archived    bool       `json:"archived,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// VisibleTo reports whether userID created the task or is assigned to it.
// Project membership widens visibility further; that check lives with the
// caller because it needs the project.
func (t *Task) VisibleTo(userID string) bool {
	return t.CreatorID == userID || t.AssigneeID == userID
}

// IsOverdue reports whether the task has a due date in the past and is not done.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusDone
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
