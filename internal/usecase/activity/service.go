// Package activity maintains the append-only activity feed.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domact "github.com/kailas-cloud/promemo/internal/domain/activity"
)

// Service records and lists activity entries.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates an activity service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record stamps and appends an activity entry.
func (s *Service) Record(ctx context.Context, a domact.Activity) error {
	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC()
	if err := s.repo.Append(ctx, &a); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// List returns the global feed newest first.
func (s *Service) List(ctx context.Context, offset, limit int) ([]domact.Activity, error) {
	out, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return out, nil
}

// ListByProject returns one project's feed newest first.
func (s *Service) ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domact.Activity, error) {
	out, err := s.repo.ListByProject(ctx, projectID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list project activities: %w", err)
	}
	return out, nil
}
