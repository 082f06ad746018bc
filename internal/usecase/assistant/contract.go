package assistant

import (
	"context"

	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

// Completer produces a completion for a prompt. Implemented by the OpenAI
// transport adapter.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// TaskReader lists a project's tasks for prompt context.
type TaskReader interface {
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domtask.Task, error)
}
