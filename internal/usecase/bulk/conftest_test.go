package bulk

import (
	"context"

	"go.uber.org/zap"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

// --- Mocks ---

// mockTaskRepo keeps tasks in a map and resolves GetMulti the way the real
// repository does: missing ids are skipped without error.
type mockTaskRepo struct {
	tasks       map[string]domtask.Task
	upserted    []domtask.Task
	deleted     []string
	upsertErr   error
	multiErr    error
	listErr     error
	deleteCalls int
}

func newMockTaskRepo(tasks ...domtask.Task) *mockTaskRepo {
	m := &mockTaskRepo{tasks: map[string]domtask.Task{}}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

func (m *mockTaskRepo) Upsert(_ context.Context, t *domtask.Task) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	m.tasks[t.ID] = *t
	m.upserted = append(m.upserted, *t)
	return false, nil
}

func (m *mockTaskRepo) GetMulti(_ context.Context, ids []string) ([]domtask.Task, error) {
	var out []domtask.Task
	for _, id := range ids {
		if t, ok := m.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) UpsertMulti(_ context.Context, tasks []domtask.Task) error {
	if m.multiErr != nil {
		return m.multiErr
	}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	m.upserted = append(m.upserted, tasks...)
	return nil
}

func (m *mockTaskRepo) DeleteMulti(_ context.Context, tasks []domtask.Task) (int, error) {
	m.deleteCalls++
	n := 0
	for _, t := range tasks {
		if _, ok := m.tasks[t.ID]; ok {
			delete(m.tasks, t.ID)
			m.deleted = append(m.deleted, t.ID)
			n++
		}
	}
	return n, nil
}

func (m *mockTaskRepo) ListByProject(_ context.Context, projectID string, _, _ int) ([]domtask.Task, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domtask.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

type mockProjectRepo struct {
	projects map[string]domproj.Project
	deleted  []string
}

func newMockProjectRepo(projects ...domproj.Project) *mockProjectRepo {
	m := &mockProjectRepo{projects: map[string]domproj.Project{}}
	for _, p := range projects {
		m.projects[p.ID] = p
	}
	return m
}

func (m *mockProjectRepo) Upsert(_ context.Context, p *domproj.Project) (bool, error) {
	m.projects[p.ID] = *p
	return false, nil
}

func (m *mockProjectRepo) GetMulti(_ context.Context, ids []string) ([]domproj.Project, error) {
	var out []domproj.Project
	for _, id := range ids {
		if p, ok := m.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProjectRepo) DeleteMulti(_ context.Context, ids []string) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := m.projects[id]; ok {
			delete(m.projects, id)
			m.deleted = append(m.deleted, id)
			n++
		}
	}
	return n, nil
}

func newTestService(tasks *mockTaskRepo, projects *mockProjectRepo) *Service {
	return New(tasks, projects, zap.NewNop())
}
