// Package user persists users as JSON documents plus an email lookup key.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/promemo/internal/db"
	"github.com/kailas-cloud/promemo/internal/domain"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// store is the consumer interface for user persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	ZAdd(ctx context.Context, key string, members ...db.ZMember) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRevRange(ctx context.Context, key string, start, stop int) ([]string, error)
	ZCard(ctx context.Context, key string) (int, error)
}

// Repo implements the user repository over a JSON document store.
// Email uniqueness is enforced through a lowercase email lookup key.
type Repo struct {
	store  store
	prefix string
}

// New creates a user repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Create stores a new user. Fails with domain.ErrAlreadyExists when the
// email is taken.
func (r *Repo) Create(ctx context.Context, u *domuser.User) error {
	emailKey := r.emailKey(u.Email)
	if _, err := r.store.Get(ctx, emailKey); err == nil {
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrAlreadyExists)
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("check email %s: %w", u.Email, err)
	}

	if err := r.put(ctx, u); err != nil {
		return err
	}
	if err := r.store.Set(ctx, emailKey, []byte(u.ID)); err != nil {
		return fmt.Errorf("index email %s: %w", u.Email, err)
	}
	member := db.ZMember{Member: u.ID, Score: float64(u.CreatedAt.UnixMilli())}
	if err := r.store.ZAdd(ctx, r.indexKey(), member); err != nil {
		return fmt.Errorf("index user %s: %w", u.ID, err)
	}
	return nil
}

// Update stores an existing user. The email lookup key is not moved; email
// changes go through Create-level checks in the service.
func (r *Repo) Update(ctx context.Context, u *domuser.User) error {
	if _, err := r.Get(ctx, u.ID); err != nil {
		return err
	}
	return r.put(ctx, u)
}

// Get returns a user by ID.
func (r *Repo) Get(ctx context.Context, id string) (domuser.User, error) {
	raw, err := r.store.JSONGet(ctx, r.docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domuser.User{}, domain.ErrUserNotFound
		}
		return domuser.User{}, fmt.Errorf("json.get user %s: %w", id, err)
	}

	u, err := unmarshalUser(raw)
	if err != nil {
		return domuser.User{}, fmt.Errorf("user %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail returns a user by email (case-insensitive).
func (r *Repo) GetByEmail(ctx context.Context, email string) (domuser.User, error) {
	id, err := r.store.Get(ctx, r.emailKey(email))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domuser.User{}, domain.ErrUserNotFound
		}
		return domuser.User{}, fmt.Errorf("lookup email %s: %w", email, err)
	}
	return r.Get(ctx, string(id))
}

// List returns users newest first.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domuser.User, error) {
	stop := -1
	if limit > 0 {
		stop = offset + limit - 1
	}
	ids, err := r.store.ZRevRange(ctx, r.indexKey(), offset, stop)
	if err != nil {
		return nil, fmt.Errorf("range users: %w", err)
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
		return nil, fmt.Errorf("json.get users: %w", err)
	}

	users := make([]domuser.User, 0, len(ids))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		u, err := unmarshalUser(raw)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", ids[i], err)
		}
		users = append(users, u)
	}
	return users, nil
}

// Count returns the total number of users.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.ZCard(ctx, r.indexKey())
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Delete removes a user, its email lookup key, and its index entry.
func (r *Repo) Delete(ctx context.Context, id string) error {
	u, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.store.Del(ctx, r.docKey(id)); err != nil {
		return fmt.Errorf("del user %s: %w", id, err)
	}
	if err := r.store.Del(ctx, r.emailKey(u.Email)); err != nil {
		return fmt.Errorf("del email %s: %w", u.Email, err)
	}
	if err := r.store.ZRem(ctx, r.indexKey(), id); err != nil {
		return fmt.Errorf("unindex user %s: %w", id, err)
	}
	return nil
}

func (r *Repo) put(ctx context.Context, u *domuser.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.docKey(u.ID), data); err != nil {
		return fmt.Errorf("json.set user %s: %w", u.ID, err)
	}
	return nil
}

func (r *Repo) docKey(id string) string {
	return fmt.Sprintf("%suser:%s", r.prefix, id)
}

func (r *Repo) emailKey(email string) string {
	return fmt.Sprintf("%suser:email:%s", r.prefix, strings.ToLower(email))
}

func (r *Repo) indexKey() string {
	return fmt.Sprintf("%suser:index", r.prefix)
}

func unmarshalUser(raw []byte) (domuser.User, error) {
	var arr []domuser.User
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) == 0 {
			return domuser.User{}, domain.ErrUserNotFound
		}
		return arr[0], nil
	}
	var u domuser.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domuser.User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return u, nil
}
