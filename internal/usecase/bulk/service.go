// Package bulk applies one mutation to a set of entity ids in one operation.
// Ids that resolve to nothing are skipped silently; only the affected count
// is reported.
package bulk

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/domain"
	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

// Service executes bulk mutations.
type Service struct {
	tasks    TaskRepository
	projects ProjectRepository
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a bulk service.
func New(tasks TaskRepository, projects ProjectRepository, logger *zap.Logger) *Service {
	return &Service{tasks: tasks, projects: projects, logger: logger, now: time.Now}
}

// Result reports how many entities a bulk operation touched.
type Result struct {
	ModifiedCount int `json:"modifiedCount,omitempty"`
	DeletedCount  int `json:"deletedCount,omitempty"`
}

// TaskPatch is the partial update applied to every resolved task.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *domtask.Status
	Priority    *domtask.Priority
	AssigneeID  *string
	Tags        *[]string
	DueDate     *time.Time
	Archived    *bool
}

// UpdateTasks applies a patch to every resolved task id.
func (s *Service) UpdateTasks(ctx context.Context, ids []string, patch TaskPatch) (Result, error) {
	if patch.Status != nil && !domtask.ValidStatus(*patch.Status) {
		return Result{}, fmt.Errorf("unknown status %q: %w", *patch.Status, domain.ErrValidation)
	}
	if patch.Priority != nil && !domtask.ValidPriority(*patch.Priority) {
		return Result{}, fmt.Errorf("unknown priority %q: %w", *patch.Priority, domain.ErrValidation)
	}
	return s.mutateTasks(ctx, ids, func(t *domtask.Task) {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.AssigneeID != nil {
			t.AssigneeID = *patch.AssigneeID
		}
		if patch.Tags != nil {
			t.Tags = *patch.Tags
		}
		if patch.DueDate != nil {
			t.DueDate = patch.DueDate
		}
		if patch.Archived != nil {
			t.Archived = *patch.Archived
		}
	})
}

// UpdateTaskStatus sets the status of every resolved task id.
func (s *Service) UpdateTaskStatus(ctx context.Context, ids []string, status domtask.Status) (Result, error) {
	if !domtask.ValidStatus(status) {
		return Result{}, fmt.Errorf("unknown status %q: %w", status, domain.ErrValidation)
	}
	return s.mutateTasks(ctx, ids, func(t *domtask.Task) { t.Status = status })
}

// UpdateTaskPriority sets the priority of every resolved task id.
func (s *Service) UpdateTaskPriority(ctx context.Context, ids []string, priority domtask.Priority) (Result, error) {
	if !domtask.ValidPriority(priority) {
		return Result{}, fmt.Errorf("unknown priority %q: %w", priority, domain.ErrValidation)
	}
	return s.mutateTasks(ctx, ids, func(t *domtask.Task) { t.Priority = priority })
}

// AssignTasks sets the assignee of every resolved task id.
func (s *Service) AssignTasks(ctx context.Context, ids []string, assigneeID string) (Result, error) {
	return s.mutateTasks(ctx, ids, func(t *domtask.Task) { t.AssigneeID = assigneeID })
}

// ArchiveTasks archives every resolved task id.
func (s *Service) ArchiveTasks(ctx context.Context, ids []string) (Result, error) {
	return s.mutateTasks(ctx, ids, func(t *domtask.Task) { t.Archived = true })
}

// MoveTasks reparents every resolved task id into targetProjectID. Tasks are
// written one at a time so the per-project indexes follow the move.
func (s *Service) MoveTasks(ctx context.Context, ids []string, targetProjectID string) (Result, error) {
	if err := validateIDs(ids); err != nil {
		return Result{}, err
	}
	if targetProjectID == "" {
		return Result{}, fmt.Errorf("target project_id is required: %w", domain.ErrValidation)
	}

	tasks, err := s.tasks.GetMulti(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("resolve tasks: %w", err)
	}

	nowTime := s.now().UTC()
	moved := 0
	for i := range tasks {
		tasks[i].ProjectID = targetProjectID
		tasks[i].UpdatedAt = nowTime
		if _, err := s.tasks.Upsert(ctx, &tasks[i]); err != nil {
			return Result{ModifiedCount: moved}, fmt.Errorf("move task %s: %w", tasks[i].ID, err)
		}
		moved++
	}
	return Result{ModifiedCount: moved}, nil
}

// DeleteTasks deletes every resolved task id.
func (s *Service) DeleteTasks(ctx context.Context, ids []string) (Result, error) {
	if err := validateIDs(ids); err != nil {
		return Result{}, err
	}

	tasks, err := s.tasks.GetMulti(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("resolve tasks: %w", err)
	}
	deleted, err := s.tasks.DeleteMulti(ctx, tasks)
	if err != nil {
		return Result{}, fmt.Errorf("delete tasks: %w", err)
	}
	return Result{DeletedCount: deleted}, nil
}

// ProjectPatch is the partial update applied to every resolved project.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *domproj.Status
	Tags        *[]string
	Archived    *bool
}

// UpdateProjects applies a patch to every resolved project id.
func (s *Service) UpdateProjects(ctx context.Context, ids []string, patch ProjectPatch) (Result, error) {
	if patch.Status != nil && !domproj.ValidStatus(*patch.Status) {
		return Result{}, fmt.Errorf("unknown status %q: %w", *patch.Status, domain.ErrValidation)
	}
	return s.mutateProjects(ctx, ids, func(p *domproj.Project) {
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.Tags != nil {
			p.Tags = *patch.Tags
		}
		if patch.Archived != nil {
			p.Archived = *patch.Archived
		}
	})
}

// ArchiveProjects archives every resolved project id.
func (s *Service) ArchiveProjects(ctx context.Context, ids []string) (Result, error) {
	return s.mutateProjects(ctx, ids, func(p *domproj.Project) { p.Archived = true })
}

// DeleteProjects deletes every resolved project id, removing each project's
// tasks first so no task outlives its project. The two steps are not
// transactional.
func (s *Service) DeleteProjects(ctx context.Context, ids []string) (Result, error) {
	if err := validateIDs(ids); err != nil {
		return Result{}, err
	}

	projects, err := s.projects.GetMulti(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("resolve projects: %w", err)
	}

	resolved := make([]string, 0, len(projects))
	for i := range projects {
		tasks, err := s.tasks.ListByProject(ctx, projects[i].ID, 0, 0)
		if err != nil {
			return Result{}, fmt.Errorf("list project tasks: %w", err)
		}
		if n, err := s.tasks.DeleteMulti(ctx, tasks); err != nil {
			return Result{}, fmt.Errorf("delete project tasks: %w", err)
		} else if n > 0 {
			s.logger.Info("cascade deleted tasks",
				zap.String("project", projects[i].ID), zap.Int("count", n))
		}
		resolved = append(resolved, projects[i].ID)
	}

	deleted, err := s.projects.DeleteMulti(ctx, resolved)
	if err != nil {
		return Result{}, fmt.Errorf("delete projects: %w", err)
	}
	return Result{DeletedCount: deleted}, nil
}

// mutateTasks resolves ids, applies fn to each survivor, stamps the update
// time, and writes them back in one pipeline.
func (s *Service) mutateTasks(ctx context.Context, ids []string, fn func(*domtask.Task)) (Result, error) {
	if err := validateIDs(ids); err != nil {
		return Result{}, err
	}

	tasks, err := s.tasks.GetMulti(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("resolve tasks: %w", err)
	}

	nowTime := s.now().UTC()
	for i := range tasks {
		fn(&tasks[i])
		tasks[i].UpdatedAt = nowTime
	}
	if err := s.tasks.UpsertMulti(ctx, tasks); err != nil {
		return Result{}, fmt.Errorf("write tasks: %w", err)
	}
	return Result{ModifiedCount: len(tasks)}, nil
}

func (s *Service) mutateProjects(ctx context.Context, ids []string, fn func(*domproj.Project)) (Result, error) {
	if err := validateIDs(ids); err != nil {
		return Result{}, err
	}

	projects, err := s.projects.GetMulti(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("resolve projects: %w", err)
	}

	nowTime := s.now().UTC()
	modified := 0
	for i := range projects {
		fn(&projects[i])
		projects[i].UpdatedAt = nowTime
		if _, err := s.projects.Upsert(ctx, &projects[i]); err != nil {
			return Result{ModifiedCount: modified}, fmt.Errorf("write project %s: %w", projects[i].ID, err)
		}
		modified++
	}
	return Result{ModifiedCount: modified}, nil
}

func validateIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("ids must be non-empty: %w", domain.ErrValidation)
	}
	return nil
}
