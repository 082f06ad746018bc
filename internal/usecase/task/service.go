// Package task handles task CRUD with activity and notification side effects.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/domain"
	domact "github.com/kailas-cloud/promemo/internal/domain/activity"
	domnotif "github.com/kailas-cloud/promemo/internal/domain/notification"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// Service handles task business rules.
type Service struct {
	repo     Repository
	projects ProjectReader
	recorder Recorder
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a task service.
func New(repo Repository, projects ProjectReader, recorder Recorder, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		recorder: recorder,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateInput holds the fields for a new task.
type CreateInput struct {
	ProjectID   string
	Title       string
	Description string
	Priority    domtask.Priority
	AssigneeID  string
	Tags        []string
	DueDate     *time.Time
}

// Create stores a new task in a project the requester belongs to.
func (s *Service) Create(ctx context.Context, requester domuser.User, in CreateInput) (domtask.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domtask.Task{}, fmt.Errorf("task title is required: %w", domain.ErrValidation)
	}
	if in.ProjectID == "" {
		return domtask.Task{}, fmt.Errorf("project_id is required: %w", domain.ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = domtask.PriorityMedium
	}
	if !domtask.ValidPriority(in.Priority) {
		return domtask.Task{}, fmt.Errorf("unknown priority %q: %w", in.Priority, domain.ErrValidation)
	}

	p, err := s.projects.Get(ctx, in.ProjectID)
	if err != nil {
		return domtask.Task{}, fmt.Errorf("get project: %w", err)
	}
	if !p.HasMember(requester.ID) && !requester.IsAdmin() {
		return domtask.Task{}, fmt.Errorf("project %s: %w", in.ProjectID, domain.ErrForbidden)
	}

	nowTime := s.now().UTC()
	t := domtask.Task{
		ID:          uuid.NewString(),
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      domtask.StatusTodo,
		Priority:    in.Priority,
		CreatorID:   requester.ID,
		AssigneeID:  in.AssigneeID,
		Tags:        in.Tags,
		DueDate:     in.DueDate,
		CreatedAt:   nowTime,
		UpdatedAt:   nowTime,
	}
	if _, err := s.repo.Upsert(ctx, &t); err != nil {
		return domtask.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.record(ctx, requester.ID, domact.ActionCreated, t.ID, t.ProjectID, "task created")
	if t.AssigneeID != "" && t.AssigneeID != requester.ID {
		s.notify(ctx, t.AssigneeID,
			fmt.Sprintf("You were assigned %q", t.Title), t.ID, string(domnotif.TypeTaskAssigned))
	}
	return t, nil
}

// Get returns a task visible to the requester.
func (s *Service) Get(ctx context.Context, requester domuser.User, id string) (domtask.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return domtask.Task{}, fmt.Errorf("get task: %w", err)
	}
	if !s.visible(ctx, requester, &t) {
		return domtask.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrForbidden)
	}
	return t, nil
}

// List returns the requester's visible tasks newest first. projectID narrows
// the listing to one project.
func (s *Service) List(
	ctx context.Context, requester domuser.User, projectID string, offset, limit int,
) ([]domtask.Task, error) {
	var all []domtask.Task
	var err error
	if projectID != "" {
		all, err = s.repo.ListByProject(ctx, projectID, 0, 0)
	} else {
		all, err = s.repo.List(ctx, 0, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	visible := make([]domtask.Task, 0, len(all))
	for i := range all {
		if s.visible(ctx, requester, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	return page(visible, offset, limit), nil
}

// Patch holds optional task updates.
type Patch struct {
	Title       *string
	Description *string
	Status      *domtask.Status
	Priority    *domtask.Priority
	AssigneeID  *string
	ProjectID   *string
	Tags        *[]string
	DueDate     *time.Time
	Archived    *bool
}

// Update applies a patch to a task visible to the requester.
func (s *Service) Update(
	ctx context.Context, requester domuser.User, id string, patch Patch,
) (domtask.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return domtask.Task{}, fmt.Errorf("get task: %w", err)
	}
	if !s.visible(ctx, requester, &t) {
		return domtask.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrForbidden)
	}

	oldStatus := t.Status
	oldAssignee := t.AssigneeID

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domtask.Task{}, fmt.Errorf("task title is required: %w", domain.ErrValidation)
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		if !domtask.ValidStatus(*patch.Status) {
			return domtask.Task{}, fmt.Errorf("unknown status %q: %w", *patch.Status, domain.ErrValidation)
		}
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !domtask.ValidPriority(*patch.Priority) {
			return domtask.Task{}, fmt.Errorf("unknown priority %q: %w", *patch.Priority, domain.ErrValidation)
		}
		t.Priority = *patch.Priority
	}
	if patch.AssigneeID != nil {
		t.AssigneeID = *patch.AssigneeID
	}
	if patch.ProjectID != nil && *patch.ProjectID != t.ProjectID {
		p, err := s.projects.Get(ctx, *patch.ProjectID)
		if err != nil {
			return domtask.Task{}, fmt.Errorf("get target project: %w", err)
		}
		if !p.HasMember(requester.ID) && !requester.IsAdmin() {
			return domtask.Task{}, fmt.Errorf("project %s: %w", p.ID, domain.ErrForbidden)
		}
		t.ProjectID = *patch.ProjectID
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
	t.UpdatedAt = s.now().UTC()

	if _, err := s.repo.Upsert(ctx, &t); err != nil {
		return domtask.Task{}, fmt.Errorf("update task: %w", err)
	}

	s.record(ctx, requester.ID, domact.ActionUpdated, t.ID, t.ProjectID, "task updated")
	if t.Status != oldStatus {
		s.notifyWatcher(ctx, requester.ID, &t,
			fmt.Sprintf("%q moved to %s", t.Title, t.Status), domnotif.TypeStatusChanged)
	}
	if t.AssigneeID != "" && t.AssigneeID != oldAssignee && t.AssigneeID != requester.ID {
		s.notify(ctx, t.AssigneeID,
			fmt.Sprintf("You were assigned %q", t.Title), t.ID, string(domnotif.TypeTaskAssigned))
	}
	return t, nil
}

// Delete removes a task visible to the requester.
func (s *Service) Delete(ctx context.Context, requester domuser.User, id string) error {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if !s.visible(ctx, requester, &t) {
		return fmt.Errorf("task %s: %w", id, domain.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.record(ctx, requester.ID, domact.ActionDeleted, id, t.ProjectID, "task deleted")
	return nil
}

// visible reports whether the requester may see the task: creator, assignee,
// project member, or admin.
func (s *Service) visible(ctx context.Context, requester domuser.User, t *domtask.Task) bool {
	if requester.IsAdmin() || t.VisibleTo(requester.ID) {
		return true
	}
	p, err := s.projects.Get(ctx, t.ProjectID)
	if err != nil {
		if !errors.Is(err, domain.ErrProjectNotFound) {
			s.logger.Warn("visibility check failed", zap.String("task", t.ID), zap.Error(err))
		}
		return false
	}
	return p.HasMember(requester.ID)
}

func (s *Service) record(ctx context.Context, userID string, action domact.Action, entityID, projectID, detail string) {
	a := domact.Activity{
		UserID:     userID,
		Action:     action,
		EntityType: "task",
		EntityID:   entityID,
		ProjectID:  projectID,
		Detail:     detail,
	}
	if err := s.recorder.Record(ctx, a); err != nil {
		s.logger.Warn("record activity failed", zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, userID, message, entityID, kind string) {
	if err := s.notifier.Notify(ctx, userID, message, entityID, kind); err != nil {
		s.logger.Warn("notify failed", zap.Error(err))
	}
}

// notifyWatcher tells the creator and assignee about a change, skipping the
// actor themselves.
func (s *Service) notifyWatcher(ctx context.Context, actorID string, t *domtask.Task, message string, kind domnotif.Type) {
	seen := map[string]bool{actorID: true}
	for _, id := range []string{t.CreatorID, t.AssigneeID} {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		s.notify(ctx, id, message, t.ID, string(kind))
	}
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
