// Package user handles user profile operations.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/promemo/internal/domain"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// Service handles user CRUD.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a user service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id string) (domuser.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return domuser.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List returns users newest first. Admin only.
func (s *Service) List(ctx context.Context, requester domuser.User, offset, limit int) ([]domuser.User, error) {
	if !requester.IsAdmin() {
		return nil, fmt.Errorf("listing users requires admin: %w", domain.ErrForbidden)
	}
	users, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateName renames a user. Users may rename themselves; admins anyone.
func (s *Service) UpdateName(ctx context.Context, requester domuser.User, id, name string) (domuser.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domuser.User{}, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if requester.ID != id && !requester.IsAdmin() {
		return domuser.User{}, fmt.Errorf("cannot rename another user: %w", domain.ErrForbidden)
	}

	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return domuser.User{}, fmt.Errorf("get user: %w", err)
	}

	u.Name = name
	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &u); err != nil {
		return domuser.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete removes a user. Admin only.
func (s *Service) Delete(ctx context.Context, requester domuser.User, id string) error {
	if !requester.IsAdmin() {
		return fmt.Errorf("deleting users requires admin: %w", domain.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
