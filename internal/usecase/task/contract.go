package task

import (
	"context"

	domact "github.com/kailas-cloud/promemo/internal/domain/activity"
	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

// Repository defines the storage contract for task operations.
type Repository interface {
	Upsert(ctx context.Context, t *domtask.Task) (bool, error)
	Get(ctx context.Context, id string) (domtask.Task, error)
	List(ctx context.Context, offset, limit int) ([]domtask.Task, error)
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domtask.Task, error)
	Delete(ctx context.Context, id string) error
}

// ProjectReader reads projects for membership checks.
type ProjectReader interface {
	Get(ctx context.Context, id string) (domproj.Project, error)
}

// Recorder appends activity feed entries.
type Recorder interface {
	Record(ctx context.Context, a domact.Activity) error
}

// Notifier delivers user notifications.
type Notifier interface {
	Notify(ctx context.Context, userID, message, entityID string, kind string) error
}
