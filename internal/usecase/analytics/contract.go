package analytics

import (
	"context"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

// TaskReader lists tasks for aggregation.
type TaskReader interface {
	List(ctx context.Context, offset, limit int) ([]domtask.Task, error)
}

// ProjectReader lists projects for aggregation.
type ProjectReader interface {
	List(ctx context.Context, offset, limit int) ([]domproj.Project, error)
}
