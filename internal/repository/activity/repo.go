// Package activity persists the append-only activity feed.
package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/promemo/internal/db"
	domact "github.com/kailas-cloud/promemo/internal/domain/activity"
)

// store is the consumer interface for activity persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	ZAdd(ctx context.Context, key string, members ...db.ZMember) error
	ZRevRange(ctx context.Context, key string, start, stop int) ([]string, error)
}

// Repo implements the activity repository. Entries are append-only.
type Repo struct {
	store  store
	prefix string
}

// New creates an activity repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Append stores an activity entry in the global feed and, when it carries a
// project, in that project's feed.
func (r *Repo) Append(ctx context.Context, a *domact.Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.docKey(a.ID), data); err != nil {
		return fmt.Errorf("json.set activity %s: %w", a.ID, err)
	}

	member := db.ZMember{Member: a.ID, Score: float64(a.CreatedAt.UnixMilli())}
	if err := r.store.ZAdd(ctx, r.indexKey(), member); err != nil {
		return fmt.Errorf("index activity %s: %w", a.ID, err)
	}
	if a.ProjectID != "" {
		if err := r.store.ZAdd(ctx, r.projectKey(a.ProjectID), member); err != nil {
			return fmt.Errorf("index activity %s in project %s: %w", a.ID, a.ProjectID, err)
		}
	}
	return nil
}

// List returns feed entries newest first.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domact.Activity, error) {
	return r.listRange(ctx, r.indexKey(), offset, limit)
}

// ListByProject returns a project's feed entries newest first.
func (r *Repo) ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domact.Activity, error) {
	return r.listRange(ctx, r.projectKey(projectID), offset, limit)
}

func (r *Repo) listRange(ctx context.Context, indexKey string, offset, limit int) ([]domact.Activity, error) {
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

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(id)
	}
	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.get activities: %w", err)
	}

	out := make([]domact.Activity, 0, len(ids))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		var arr []domact.Activity
		if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
			out = append(out, arr[0])
		}
	}
	return out, nil
}

func (r *Repo) docKey(id string) string {
	return fmt.Sprintf("%sactivity:%s", r.prefix, id)
}

func (r *Repo) indexKey() string {
	return fmt.Sprintf("%sactivity:index", r.prefix)
}

func (r *Repo) projectKey(projectID string) string {
	return fmt.Sprintf("%sactivity:project:%s", r.prefix, projectID)
}
