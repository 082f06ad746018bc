// Package project handles project CRUD, membership, and cascade deletion.
package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/domain"
	domact "github.com/kailas-cloud/promemo/internal/domain/activity"
	domnotif "github.com/kailas-cloud/promemo/internal/domain/notification"
	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// Service handles project business rules.
type Service struct {
	repo     Repository
	tasks    TaskReader
	recorder Recorder
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a project service.
func New(repo Repository, tasks TaskReader, recorder Recorder, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		tasks:    tasks,
		recorder: recorder,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores a new project owned by the requester.
func (s *Service) Create(
	ctx context.Context, requester domuser.User, name, description string, tags []string,
) (domproj.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domproj.Project{}, fmt.Errorf("project name is required: %w", domain.ErrValidation)
	}

	nowTime := s.now().UTC()
	p := domproj.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		OwnerID:     requester.ID,
		Status:      domproj.StatusActive,
		Tags:        tags,
		CreatedAt:   nowTime,
		UpdatedAt:   nowTime,
	}
	if _, err := s.repo.Upsert(ctx, &p); err != nil {
		return domproj.Project{}, fmt.Errorf("create project: %w", err)
	}

	s.record(ctx, requester.ID, domact.ActionCreated, p.ID, p.ID, "project created")
	return p, nil
}

// Get returns a project visible to the requester.
func (s *Service) Get(ctx context.Context, requester domuser.User, id string) (domproj.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domproj.Project{}, fmt.Errorf("get project: %w", err)
	}
	if !p.HasMember(requester.ID) && !requester.IsAdmin() {
		return domproj.Project{}, fmt.Errorf("project %s: %w", id, domain.ErrForbidden)
	}
	return p, nil
}

// List returns the requester's visible projects newest first.
func (s *Service) List(ctx context.Context, requester domuser.User, offset, limit int) ([]domproj.Project, error) {
	all, err := s.repo.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	visible := make([]domproj.Project, 0, len(all))
	for i := range all {
		if all[i].HasMember(requester.ID) || requester.IsAdmin() {
			visible = append(visible, all[i])
		}
	}
	return page(visible, offset, limit), nil
}

// Patch holds optional project updates.
type Patch struct {
	Name        *string
	Description *string
	Status      *domproj.Status
	Tags        *[]string
	Archived    *bool
}

// Update applies a patch to a project. Owner or admin only.
func (s *Service) Update(
	ctx context.Context, requester domuser.User, id string, patch Patch,
) (domproj.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domproj.Project{}, fmt.Errorf("get project: %w", err)
	}
	if p.OwnerID != requester.ID && !requester.IsAdmin() {
		return domproj.Project{}, fmt.Errorf("project %s: %w", id, domain.ErrForbidden)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domproj.Project{}, fmt.Errorf("project name is required: %w", domain.ErrValidation)
		}
		p.Name = name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		if !domproj.ValidStatus(*patch.Status) {
			return domproj.Project{}, fmt.Errorf("unknown status %q: %w", *patch.Status, domain.ErrValidation)
		}
		p.Status = *patch.Status
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.Archived != nil {
		p.Archived = *patch.Archived
	}
	p.UpdatedAt = s.now().UTC()

	if _, err := s.repo.Upsert(ctx, &p); err != nil {
		return domproj.Project{}, fmt.Errorf("update project: %w", err)
	}

	s.record(ctx, requester.ID, domact.ActionUpdated, p.ID, p.ID, "project updated")
	return p, nil
}

// AddMember adds a user to the project and notifies them. Owner or admin only.
func (s *Service) AddMember(
	ctx context.Context, requester domuser.User, id, userID string,
) (domproj.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domproj.Project{}, fmt.Errorf("get project: %w", err)
	}
	if p.OwnerID != requester.ID && !requester.IsAdmin() {
		return domproj.Project{}, fmt.Errorf("project %s: %w", id, domain.ErrForbidden)
	}
	if p.HasMember(userID) {
		return p, nil
	}

	p.MemberIDs = append(p.MemberIDs, userID)
	p.UpdatedAt = s.now().UTC()
	if _, err := s.repo.Upsert(ctx, &p); err != nil {
		return domproj.Project{}, fmt.Errorf("update project: %w", err)
	}

	s.record(ctx, requester.ID, domact.ActionUpdated, p.ID, p.ID, "member added")
	s.notify(ctx, userID, fmt.Sprintf("You were added to project %q", p.Name), p.ID, string(domnotif.TypeProjectAdded))
	return p, nil
}

// Delete removes a project and all of its tasks. Tasks go first so no task
// is left referencing a deleted project. Owner or admin only.
func (s *Service) Delete(ctx context.Context, requester domuser.User, id string) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if p.OwnerID != requester.ID && !requester.IsAdmin() {
		return fmt.Errorf("project %s: %w", id, domain.ErrForbidden)
	}

	tasks, err := s.tasks.ListByProject(ctx, id, 0, 0)
	if err != nil {
		return fmt.Errorf("list project tasks: %w", err)
	}
	if _, err := s.tasks.DeleteMulti(ctx, tasks); err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	s.record(ctx, requester.ID, domact.ActionDeleted, id, id, "project deleted")
	return nil
}

func (s *Service) record(ctx context.Context, userID string, action domact.Action, entityID, projectID, detail string) {
	a := domact.Activity{
		UserID:     userID,
		Action:     action,
		EntityType: "project",
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
