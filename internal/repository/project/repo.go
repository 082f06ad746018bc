// Package project persists projects as JSON documents with a creation index.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/promemo/internal/db"
	"github.com/kailas-cloud/promemo/internal/domain"
	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
)

// store is the consumer interface for project persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	DelMulti(ctx context.Context, keys []string) (int, error)
	ZAdd(ctx context.Context, key string, members ...db.ZMember) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRevRange(ctx context.Context, key string, start, stop int) ([]string, error)
	ZCard(ctx context.Context, key string) (int, error)
}

// Repo implements the project repository over a JSON document store.
type Repo struct {
	store  store
	prefix string
}

// New creates a project repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Upsert creates or updates a project. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *domproj.Project) (bool, error) {
	created := false
	if _, err := r.Get(ctx, p.ID); err != nil {
		if !errors.Is(err, domain.ErrProjectNotFound) {
			return false, err
		}
		created = true
	}

	data, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("marshal project: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.docKey(p.ID), data); err != nil {
		return false, fmt.Errorf("json.set project %s: %w", p.ID, err)
	}

	member := db.ZMember{Member: p.ID, Score: float64(p.CreatedAt.UnixMilli())}
	if err := r.store.ZAdd(ctx, r.indexKey(), member); err != nil {
		return false, fmt.Errorf("index project %s: %w", p.ID, err)
	}
	return created, nil
}

// Get returns a project by ID.
func (r *Repo) Get(ctx context.Context, id string) (domproj.Project, error) {
	raw, err := r.store.JSONGet(ctx, r.docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domproj.Project{}, domain.ErrProjectNotFound
		}
		return domproj.Project{}, fmt.Errorf("json.get project %s: %w", id, err)
	}

	p, err := unmarshalProject(raw)
	if err != nil {
		return domproj.Project{}, fmt.Errorf("project %s: %w", id, err)
	}
	return p, nil
}

// GetMulti returns the projects that exist among ids, preserving input order.
// Unknown ids are skipped.
func (r *Repo) GetMulti(ctx context.Context, ids []string) ([]domproj.Project, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(id)
	}

	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.get projects: %w", err)
	}

	projects := make([]domproj.Project, 0, len(ids))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		p, err := unmarshalProject(raw)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", ids[i], err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// List returns projects newest first.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domproj.Project, error) {
	stop := -1
	if limit > 0 {
		stop = offset + limit - 1
	}
	ids, err := r.store.ZRevRange(ctx, r.indexKey(), offset, stop)
	if err != nil {
		return nil, fmt.Errorf("range projects: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return r.GetMulti(ctx, ids)
}

// Count returns the total number of projects.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.ZCard(ctx, r.indexKey())
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// DeleteMulti removes projects and their index entries. Returns the number
// of documents actually deleted.
func (r *Repo) DeleteMulti(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(id)
	}

	deleted, err := r.store.DelMulti(ctx, keys)
	if err != nil {
		return deleted, fmt.Errorf("del projects: %w", err)
	}
	if err := r.store.ZRem(ctx, r.indexKey(), ids...); err != nil {
		return deleted, fmt.Errorf("unindex projects: %w", err)
	}
	return deleted, nil
}

// Delete removes a single project.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if _, err := r.DeleteMulti(ctx, []string{id}); err != nil {
		return err
	}
	return nil
}

func (r *Repo) docKey(id string) string {
	return fmt.Sprintf("%sproject:%s", r.prefix, id)
}

func (r *Repo) indexKey() string {
	return fmt.Sprintf("%sproject:index", r.prefix)
}

func unmarshalProject(raw []byte) (domproj.Project, error) {
	var arr []domproj.Project
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) == 0 {
			return domproj.Project{}, domain.ErrProjectNotFound
		}
		return arr[0], nil
	}
	var p domproj.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return domproj.Project{}, fmt.Errorf("unmarshal project: %w", err)
	}
	return p, nil
}
