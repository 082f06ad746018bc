package export

import (
	"context"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
	usetask "github.com/kailas-cloud/promemo/internal/usecase/task"
)

// TaskReader lists tasks for export.
type TaskReader interface {
	List(ctx context.Context, offset, limit int) ([]domtask.Task, error)
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domtask.Task, error)
}

// ProjectReader lists projects for export and name resolution.
type ProjectReader interface {
	List(ctx context.Context, offset, limit int) ([]domproj.Project, error)
}

// TaskCreator routes imported records through the regular creation path so
// they get the same validation and side effects.
type TaskCreator interface {
	Create(ctx context.Context, requester domuser.User, in usetask.CreateInput) (domtask.Task, error)
}
