package search

import (
	"context"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// TaskReader lists candidate tasks.
type TaskReader interface {
	List(ctx context.Context, offset, limit int) ([]domtask.Task, error)
}

// ProjectReader lists candidate projects.
type ProjectReader interface {
	List(ctx context.Context, offset, limit int) ([]domproj.Project, error)
}

// UserReader lists candidate users.
type UserReader interface {
	List(ctx context.Context, offset, limit int) ([]domuser.User, error)
}
