package bulk

import (
	"context"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

// TaskRepository gives the bulk executor batched access to tasks.
type TaskRepository interface {
	Upsert(ctx context.Context, t *domtask.Task) (bool, error)
	GetMulti(ctx context.Context, ids []string) ([]domtask.Task, error)
	UpsertMulti(ctx context.Context, tasks []domtask.Task) error
	DeleteMulti(ctx context.Context, tasks []domtask.Task) (int, error)
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domtask.Task, error)
}

// ProjectRepository gives the bulk executor batched access to projects.
type ProjectRepository interface {
	Upsert(ctx context.Context, p *domproj.Project) (bool, error)
	GetMulti(ctx context.Context, ids []string) ([]domproj.Project, error)
	DeleteMulti(ctx context.Context, ids []string) (int, error)
}
