// Package notification persists notifications with a per-user index.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/promemo/internal/db"
	"github.com/kailas-cloud/promemo/internal/domain"
	domnotif "github.com/kailas-cloud/promemo/internal/domain/notification"
)

// store is the consumer interface for notification persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	DelMulti(ctx context.Context, keys []string) (int, error)
	ZAdd(ctx context.Context, key string, members ...db.ZMember) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRevRange(ctx context.Context, key string, start, stop int) ([]string, error)
}

// Repo implements the notification repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a notification repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Put stores a notification and indexes it under its user.
func (r *Repo) Put(ctx context.Context, n *domnotif.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.docKey(n.ID), data); err != nil {
		return fmt.Errorf("json.set notification %s: %w", n.ID, err)
	}
	member := db.ZMember{Member: n.ID, Score: float64(n.CreatedAt.UnixMilli())}
	if err := r.store.ZAdd(ctx, r.userKey(n.UserID), member); err != nil {
		return fmt.Errorf("index notification %s: %w", n.ID, err)
	}
	return nil
}

// Get returns a notification by ID.
func (r *Repo) Get(ctx context.Context, id string) (domnotif.Notification, error) {
	raw, err := r.store.JSONGet(ctx, r.docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domnotif.Notification{}, domain.ErrNotFound
		}
		return domnotif.Notification{}, fmt.Errorf("json.get notification %s: %w", id, err)
	}

	var arr []domnotif.Notification
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return arr[0], nil
	}
	var n domnotif.Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return domnotif.Notification{}, fmt.Errorf("unmarshal notification %s: %w", id, err)
	}
	return n, nil
}

// ListByUser returns a user's notifications newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domnotif.Notification, error) {
	stop := -1
	if limit > 0 {
		stop = offset + limit - 1
	}
	ids, err := r.store.ZRevRange(ctx, r.userKey(userID), offset, stop)
	if err != nil {
		return nil, fmt.Errorf("range notifications: %w", err)
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
		return nil, fmt.Errorf("json.get notifications: %w", err)
	}

	out := make([]domnotif.Notification, 0, len(ids))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		var arr []domnotif.Notification
		if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
			out = append(out, arr[0])
		}
	}
	return out, nil
}

// DeleteOlderThan removes a user's notifications created before cutoffMilli.
// Returns the number removed.
func (r *Repo) DeleteOlderThan(ctx context.Context, userID string, cutoffMilli float64) (int, error) {
	all, err := r.ListByUser(ctx, userID, 0, 0)
	if err != nil {
		return 0, err
	}

	var keys, ids []string
	for i := range all {
		if float64(all[i].CreatedAt.UnixMilli()) < cutoffMilli {
			keys = append(keys, r.docKey(all[i].ID))
			ids = append(ids, all[i].ID)
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	deleted, err := r.store.DelMulti(ctx, keys)
	if err != nil {
		return deleted, fmt.Errorf("del notifications: %w", err)
	}
	if err := r.store.ZRem(ctx, r.userKey(userID), ids...); err != nil {
		return deleted, fmt.Errorf("unindex notifications: %w", err)
	}
	return deleted, nil
}

func (r *Repo) docKey(id string) string {
	return fmt.Sprintf("%snotification:%s", r.prefix, id)
}

func (r *Repo) userKey(userID string) string {
	return fmt.Sprintf("%snotification:user:%s", r.prefix, userID)
}
