// Package project defines the project entity.
package project

import "time"

// Status is a project lifecycle state.
type Status string

// Project statuses.
const (
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
)

// Project is a container for tasks with an owner and a member list.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	MemberIDs   []string  `json:"member_ids,omitempty"`
	Status      Status    `json:"status"`
	Tags        []string  `json:"tags,omitempty"`
	Archived    bool      `json:"archived,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasMember reports whether userID is the owner or a listed member.
func (p *Project) HasMember(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known project status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}
