// Package notification delivers and manages per-user notifications.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/domain"
	domnotif "github.com/kailas-cloud/promemo/internal/domain/notification"
)

// Service handles notification delivery, listing, and cleanup.
type Service struct {
	repo   Repository
	users  UserLister
	logger *zap.Logger
	now    func() time.Time
}

// New creates a notification service.
func New(repo Repository, users UserLister, logger *zap.Logger) *Service {
	return &Service{repo: repo, users: users, logger: logger, now: time.Now}
}

// Notify stores a notification for a user.
func (s *Service) Notify(ctx context.Context, userID, message, entityID string, kind string) error {
	n := domnotif.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      domnotif.Type(kind),
		Message:   message,
		EntityID:  entityID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Put(ctx, &n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// ListForUser returns a user's notifications newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, offset, limit int) ([]domnotif.Notification, error) {
	out, err := s.repo.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkRead flags a notification as read. Only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, userID, id string) (domnotif.Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return domnotif.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	if n.UserID != userID {
		return domnotif.Notification{}, fmt.Errorf("notification %s: %w", id, domain.ErrForbidden)
	}
	if n.Read {
		return n, nil
	}

	n.Read = true
	if err := s.repo.Put(ctx, &n); err != nil {
		return domnotif.Notification{}, fmt.Errorf("update notification: %w", err)
	}
	return n, nil
}

// CleanupOlderThan removes notifications older than maxAge for every user.
// Runs from the scheduler.
func (s *Service) CleanupOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	users, err := s.users.List(ctx, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	cutoff := float64(s.now().Add(-maxAge).UnixMilli())
	total := 0
	for i := range users {
		n, err := s.repo.DeleteOlderThan(ctx, users[i].ID, cutoff)
		if err != nil {
			s.logger.Warn("notification cleanup failed", zap.String("user", users[i].ID), zap.Error(err))
			continue
		}
		total += n
	}
	return total, nil
}
