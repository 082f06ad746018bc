package project

import (
	"context"

	domact "github.com/kailas-cloud/promemo/internal/domain/activity"
	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

// Repository defines the storage contract for project operations.
type Repository interface {
	Upsert(ctx context.Context, p *domproj.Project) (bool, error)
	Get(ctx context.Context, id string) (domproj.Project, error)
	List(ctx context.Context, offset, limit int) ([]domproj.Project, error)
	Delete(ctx context.Context, id string) error
}

// TaskReader lists and removes a project's tasks for cascade deletes.
type TaskReader interface {
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domtask.Task, error)
	DeleteMulti(ctx context.Context, tasks []domtask.Task) (int, error)
}

// Recorder appends activity feed entries.
type Recorder interface {
	Record(ctx context.Context, a domact.Activity) error
}

// Notifier delivers user notifications.
type Notifier interface {
	Notify(ctx context.Context, userID, message, entityID string, kind string) error
}
