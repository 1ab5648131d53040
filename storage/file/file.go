// Package file stores the subscriber list as a JSON array in a local file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/and161185/monitoring-bot/model"
	"github.com/and161185/monitoring-bot/storage"
)

type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads the whole list. A missing file yields storage.ErrNotFound,
// undecodable contents yield storage.ErrCorrupt.
func (store *FileStorage) Load(ctx context.Context) ([]model.ChatID, error) {
	data, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var ids []model.ChatID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrCorrupt, store.path, err)
	}

	return ids, nil
}

// Save overwrites the list. The new contents are written to a temporary file
// in the same directory and renamed over the old one.
func (store *FileStorage) Save(ctx context.Context, ids []model.ChatID) error {
	if ids == nil {
		ids = []model.ChatID{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal subscribers: %w", err)
	}

	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(store.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod file: %w", err)
	}
	if err := os.Rename(tmpName, store.path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}

// Ping checks that the directory holding the file is accessible.
func (store *FileStorage) Ping(ctx context.Context) error {
	dir := filepath.Dir(store.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage directory %s is not a directory", dir)
	}
	return nil
}
