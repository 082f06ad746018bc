package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/domain"
	domact "github.com/kailas-cloud/promemo/internal/domain/activity"
	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// --- Mocks ---

type mockRepo struct {
	tasks     map[string]domtask.Task
	upserted  []domtask.Task
	deleted   []string
	upsertErr error
	getErr    error
}

func newMockRepo(tasks ...domtask.Task) *mockRepo {
	m := &mockRepo{tasks: map[string]domtask.Task{}}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

func (m *mockRepo) Upsert(_ context.Context, t *domtask.Task) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	_, existed := m.tasks[t.ID]
	m.tasks[t.ID] = *t
	m.upserted = append(m.upserted, *t)
	return !existed, nil
}

func (m *mockRepo) Get(_ context.Context, id string) (domtask.Task, error) {
	if m.getErr != nil {
		return domtask.Task{}, m.getErr
	}
	t, ok := m.tasks[id]
	if !ok {
		return domtask.Task{}, domain.ErrTaskNotFound
	}
	return t, nil
}

func (m *mockRepo) List(_ context.Context, _, _ int) ([]domtask.Task, error) {
	var out []domtask.Task
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockRepo) ListByProject(_ context.Context, projectID string, _, _ int) ([]domtask.Task, error) {
	var out []domtask.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	delete(m.tasks, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockProjects struct {
	projects map[string]domproj.Project
}

func newMockProjects(projects ...domproj.Project) *mockProjects {
	m := &mockProjects{projects: map[string]domproj.Project{}}
	for _, p := range projects {
		m.projects[p.ID] = p
	}
	return m
}

func (m *mockProjects) Get(_ context.Context, id string) (domproj.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return domproj.Project{}, domain.ErrProjectNotFound
	}
	return p, nil
}

type mockRecorder struct {
	recorded []domact.Activity
	err      error
}

func (m *mockRecorder) Record(_ context.Context, a domact.Activity) error {
	m.recorded = append(m.recorded, a)
	return m.err
}

type notice struct {
	userID, message, entityID, kind string
}

type mockNotifier struct {
	notices []notice
	err     error
}

func (m *mockNotifier) Notify(_ context.Context, userID, message, entityID string, kind string) error {
	m.notices = append(m.notices, notice{userID, message, entityID, kind})
	return m.err
}

func newTestService(repo *mockRepo, projects *mockProjects, rec *mockRecorder, not *mockNotifier) *Service {
	return New(repo, projects, rec, not, zap.NewNop())
}

var (
	admin  = domuser.User{ID: "admin-1", Role: domuser.RoleAdmin}
	member = domuser.User{ID: "u-member", Role: domuser.RoleMember}
)
