package notification

import (
	"context"

	domnotif "github.com/kailas-cloud/promemo/internal/domain/notification"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// Repository defines the storage contract for notifications.
type Repository interface {
	Put(ctx context.Context, n *domnotif.Notification) error
	Get(ctx context.Context, id string) (domnotif.Notification, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]domnotif.Notification, error)
	DeleteOlderThan(ctx context.Context, userID string, cutoffMilli float64) (int, error)
}

// UserLister enumerates users for the cleanup sweep.
type UserLister interface {
	List(ctx context.Context, offset, limit int) ([]domuser.User, error)
}
