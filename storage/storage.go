// Package storage persists the zone list and its undo/redo stacks as JSON
// values under fixed string keys. Several key/value backends are available;
// Bridge layers the load and save policy on top of any of them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by KV.Get when the key has never been written
var ErrNotFound = errors.New("storage: key not found")

// KV is a string-keyed store of raw JSON values
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend
type Options struct {
	Backend string
	// Path is the JSON file (file backend) or database file (sqlite backend)
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open creates the backend described by opts
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file backend needs a path")
		}
		return NewFile(opts.Path), nil
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite backend needs a path")
		}
		return OpenSQLite(ctx, opts.Path)
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.RedisAddr, err)
		}
		return NewRedis(client, opts.RedisPrefix), nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// Memory keeps values in process memory
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error { return nil }

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
