package export

import (
	"context"

	"go.uber.org/zap"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
	usetask "github.com/kailas-cloud/promemo/internal/usecase/task"
)

// --- Mocks ---

type mockTaskReader struct {
	tasks   []domtask.Task
	listErr error
}

func (m *mockTaskReader) List(_ context.Context, _, _ int) ([]domtask.Task, error) {
	return m.tasks, m.listErr
}

func (m *mockTaskReader) ListByProject(_ context.Context, projectID string, _, _ int) ([]domtask.Task, error) {
	var out []domtask.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, m.listErr
}

type mockProjectReader struct {
	projects []domproj.Project
	listErr  error
}

func (m *mockProjectReader) List(_ context.Context, _, _ int) ([]domproj.Project, error) {
	return m.projects, m.listErr
}

type mockCreator struct {
	created   []usetask.CreateInput
	createErr error
	failOn    func(in usetask.CreateInput) error
}

func (m *mockCreator) Create(_ context.Context, _ domuser.User, in usetask.CreateInput) (domtask.Task, error) {
	if m.failOn != nil {
		if err := m.failOn(in); err != nil {
			return domtask.Task{}, err
		}
	}
	if m.createErr != nil {
		return domtask.Task{}, m.createErr
	}
	m.created = append(m.created, in)
	return domtask.Task{ID: "created", Title: in.Title}, nil
}

func newTestService(tasks *mockTaskReader, projects *mockProjectReader, creator *mockCreator) *Service {
	return New(tasks, projects, creator, 1000, zap.NewNop())
}

var admin = domuser.User{ID: "admin-1", Role: domuser.RoleAdmin}
