package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	JSONStore
	KVStore
	SortedSetStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem holds a single key+data pair for pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Data []byte
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) (int, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore provides simple key-value operations (response cache, lookup keys).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// ZMember is a sorted-set member with its score.
type ZMember struct {
	Member string
	Score  float64
}

// SortedSetStore provides sorted-set index operations. Entity repositories
// keep a creation-time index per collection so listings come back newest first.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, members ...ZMember) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRevRange(ctx context.Context, key string, start, stop int) ([]string, error)
	ZCard(ctx context.Context, key string) (int, error)
}
