package search

import (
	"context"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// --- Mocks ---

type mockTaskReader struct {
	tasks   []domtask.Task
	listErr error
}

func (m *mockTaskReader) List(_ context.Context, _, _ int) ([]domtask.Task, error) {
	return m.tasks, m.listErr
}

type mockProjectReader struct {
	projects []domproj.Project
	listErr  error
}

func (m *mockProjectReader) List(_ context.Context, _, _ int) ([]domproj.Project, error) {
	return m.projects, m.listErr
}

type mockUserReader struct {
	users   []domuser.User
	listErr error
}

func (m *mockUserReader) List(_ context.Context, _, _ int) ([]domuser.User, error) {
	return m.users, m.listErr
}

func newTestService(tasks []domtask.Task, projects []domproj.Project, users []domuser.User) *Service {
	return New(
		&mockTaskReader{tasks: tasks},
		&mockProjectReader{projects: projects},
		&mockUserReader{users: users},
		20, 100, 10,
	)
}

var admin = domuser.User{ID: "admin-1", Role: domuser.RoleAdmin}
