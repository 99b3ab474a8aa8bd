package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File keeps every key in a single JSON object on disk
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a store backed by the JSON file at path. The file is
// created on the first Set.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the file location
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return nil, err
	}
	v, ok := values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		// Start over rather than keep failing on a corrupted file.
		values = map[string]json.RawMessage{}
	}
	values[key] = json.RawMessage(value)

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	return f.writeAtomic(data)
}

func (f *File) Close() error { return nil }

func (f *File) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	values := map[string]json.RawMessage{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return values, nil
}

// writeAtomic writes to a temp file, then renames it over the store
func (f *File) writeAtomic(data []byte) error {
	if err := ensureDir(f.path); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(f.path), "timeplanner-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
