// Package task persists tasks as JSON documents with sorted-set indexes.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/promemo/internal/db"
	"github.com/kailas-cloud/promemo/internal/domain"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

// store is the consumer interface for task persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) (int, error)
	ZAdd(ctx context.Context, key string, members ...db.ZMember) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRevRange(ctx context.Context, key string, start, stop int) ([]string, error)
	ZCard(ctx context.Context, key string) (int, error)
}

// Repo implements the task repository over a JSON document store.
// Listing order is creation time descending via the index zsets.
type Repo struct {
	store  store
	prefix string
}

// New creates a task repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Upsert creates or updates a task and maintains the index zsets.
// Returns true if the task was created.
func (r *Repo) Upsert(ctx context.Context, t *domtask.Task) (bool, error) {
	key := r.docKey(t.ID)

	created := false
	var oldProject string
	existing, err := r.Get(ctx, t.ID)
	switch {
	case err == nil:
		oldProject = existing.ProjectID
	case errors.Is(err, domain.ErrTaskNotFound):
		created = true
	default:
		return false, err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return false, fmt.Errorf("marshal task: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}

	score := float64(t.CreatedAt.UnixMilli())
	if err := r.store.ZAdd(ctx, r.indexKey(), db.ZMember{Member: t.ID, Score: score}); err != nil {
		return false, fmt.Errorf("index task %s: %w", t.ID, err)
	}
	if oldProject != "" && oldProject != t.ProjectID {
		if err := r.store.ZRem(ctx, r.projectKey(oldProject), t.ID); err != nil {
			return false, fmt.Errorf("unindex task %s from project %s: %w", t.ID, oldProject, err)
		}
	}
	if err := r.store.ZAdd(ctx, r.projectKey(t.ProjectID), db.ZMember{Member: t.ID, Score: score}); err != nil {
		return false, fmt.Errorf("index task %s in project %s: %w", t.ID, t.ProjectID, err)
	}

	return created, nil
}

// Get returns a task by ID.
func (r *Repo) Get(ctx context.Context, id string) (domtask.Task, error) {
	raw, err := r.store.JSONGet(ctx, r.docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domtask.Task{}, domain.ErrTaskNotFound
		}
		return domtask.Task{}, fmt.Errorf("json.get task %s: %w", id, err)
	}

	t, err := unmarshalTask(raw)
	if err != nil {
		return domtask.Task{}, fmt.Errorf("task %s: %w", id, err)
	}
	return t, nil
}

// GetMulti returns the tasks that exist among ids, preserving input order.
// Unknown ids are skipped.
func (r *Repo) GetMulti(ctx context.Context, ids []string) ([]domtask.Task, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(id)
	}

	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.get tasks: %w", err)
	}

	tasks := make([]domtask.Task, 0, len(ids))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		t, err := unmarshalTask(raw)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", ids[i], err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// List returns tasks newest first.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domtask.Task, error) {
	return r.listRange(ctx, r.indexKey(), offset, limit)
}

// ListByProject returns a project's tasks newest first.
func (r *Repo) ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domtask.Task, error) {
	return r.listRange(ctx, r.projectKey(projectID), offset, limit)
}

// Count returns the total number of tasks.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.ZCard(ctx, r.indexKey())
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// UpsertMulti stores tasks in one pipeline and refreshes their index entries.
// The caller is responsible for project-move index hygiene; bulk mutations
// never change a task's creation time.
func (r *Repo) UpsertMulti(ctx context.Context, tasks []domtask.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, len(tasks))
	for i := range tasks {
		data, err := json.Marshal(&tasks[i])
		if err != nil {
			return fmt.Errorf("marshal task %s: %w", tasks[i].ID, err)
		}
		items[i] = db.JSONSetItem{Key: r.docKey(tasks[i].ID), Data: data}
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set tasks: %w", err)
	}

	members := make([]db.ZMember, len(tasks))
	for i := range tasks {
		members[i] = db.ZMember{Member: tasks[i].ID, Score: float64(tasks[i].CreatedAt.UnixMilli())}
	}
	if err := r.store.ZAdd(ctx, r.indexKey(), members...); err != nil {
		return fmt.Errorf("index tasks: %w", err)
	}

	byProject := make(map[string][]db.ZMember)
	for i := range tasks {
		byProject[tasks[i].ProjectID] = append(byProject[tasks[i].ProjectID], members[i])
	}
	for pid, ms := range byProject {
		if err := r.store.ZAdd(ctx, r.projectKey(pid), ms...); err != nil {
			return fmt.Errorf("index tasks in project %s: %w", pid, err)
		}
	}
	return nil
}

// DeleteMulti removes tasks and their index entries. Returns the number of
// documents actually deleted.
func (r *Repo) DeleteMulti(ctx context.Context, tasks []domtask.Task) (int, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	keys := make([]string, len(tasks))
	ids := make([]string, len(tasks))
	for i := range tasks {
		keys[i] = r.docKey(tasks[i].ID)
		ids[i] = tasks[i].ID
	}

	deleted, err := r.store.DelMulti(ctx, keys)
	if err != nil {
		return deleted, fmt.Errorf("del tasks: %w", err)
	}

	if err := r.store.ZRem(ctx, r.indexKey(), ids...); err != nil {
		return deleted, fmt.Errorf("unindex tasks: %w", err)
	}
	byProject := make(map[string][]string)
	for i := range tasks {
		byProject[tasks[i].ProjectID] = append(byProject[tasks[i].ProjectID], tasks[i].ID)
	}
	for pid, members := range byProject {
		if err := r.store.ZRem(ctx, r.projectKey(pid), members...); err != nil {
			return deleted, fmt.Errorf("unindex tasks from project %s: %w", pid, err)
		}
	}
	return deleted, nil
}

// Delete removes a single task.
func (r *Repo) Delete(ctx context.Context, id string) error {
	t, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := r.DeleteMulti(ctx, []domtask.Task{t}); err != nil {
		return err
	}
	return nil
}

func (r *Repo) listRange(ctx context.Context, indexKey string, offset, limit int) ([]domtask.Task, error) {
	stop := -1
	if limit > 0 {
		stop = offset + limit - 1
	}
	ids, err := r.store.ZRevRange(ctx, indexKey, offset, stop)
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", indexKey, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return r.GetMulti(ctx, ids)
}

func (r *Repo) docKey(id string) string {
	return fmt.Sprintf("%stask:%s", r.prefix, id)
}

func (r *Repo) indexKey() string {
	return fmt.Sprintf("%stask:index", r.prefix)
}

func (r *Repo) projectKey(projectID string) string {
	return fmt.Sprintf("%stask:project:%s", r.prefix, projectID)
}

// unmarshalTask decodes a JSON.GET payload, which arrives as a one-element
// array for root-path reads.
func unmarshalTask(raw []byte) (domtask.Task, error) {
	var arr []domtask.Task
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) == 0 {
			return domtask.Task{}, domain.ErrTaskNotFound
		}
		return arr[0], nil
	}
	var t domtask.Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return domtask.Task{}, fmt.Errorf("unmarshal task: %w", err)
	}
	return t, nil
}
