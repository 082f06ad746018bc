package activity

import (
	"context"

	domact "github.com/kailas-cloud/promemo/internal/domain/activity"
)

// Repository defines the storage contract for the activity feed.
type Repository interface {
	Append(ctx context.Context, a *domact.Activity) error
	List(ctx context.Context, offset, limit int) ([]domact.Activity, error)
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domact.Activity, error)
}
