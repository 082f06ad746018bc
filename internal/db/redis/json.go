package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/promemo/internal/db"
)

// JSONSet stores a JSON document at the given key (root path).
func (s *Store) JSONSet(ctx context.Context, key string, data []byte) error {
	cmd := s.b().Arbitrary("JSON.SET").Keys(key).Args("$", string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONSetMulti stores multiple JSON documents in a single DoMulti round-trip.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmds[i] = s.b().Arbitrary("JSON.SET").Keys(item.Key).Args("$", string(item.Data)).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}

// JSONGet retrieves a JSON document by key.
func (s *Store) JSONGet(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(key).Args("$").Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}

// JSONGetMulti fetches multiple JSON documents in a single DoMulti round-trip.
// Missing keys yield a nil entry at their position.
func (s *Store) JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Arbitrary("JSON.GET").Keys(key).Args("$").Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([][]byte, len(keys))
	for i, res := range results {
		raw, err := res.ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, &db.Error{Op: db.OpJSONGet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		if raw != "" {
			out[i] = []byte(raw)
		}
	}
	return out, nil
}

// Del removes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// DelMulti removes multiple keys in a single DoMulti round-trip.
// Returns the number of keys actually removed.
func (s *Store) DelMulti(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Del().Key(key).Build()
	}

	removed := 0
	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		n, err := res.AsInt64()
		if err != nil {
			return removed, &db.Error{Op: db.OpDel, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		removed += int(n)
	}
	return removed, nil
}

// Exists checks whether a key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return n > 0, nil
}

// Scan returns all keys matching a glob pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
