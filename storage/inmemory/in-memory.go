// Package inmemory keeps the subscriber list in process memory.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/and161185/monitoring-bot/model"
	"github.com/and161185/monitoring-bot/storage"
)

// MemStorage keeps the subscriber list in process memory only.
type MemStorage struct {
	ids   []model.ChatID
	saved bool
	saves int
	mu    sync.RWMutex
}

func NewMemStorage(ctx context.Context) *MemStorage {
	return &MemStorage{}
}

// NewMemStorageWith returns a storage pre-populated with ids, as if they had been saved.
func NewMemStorageWith(ids ...model.ChatID) *MemStorage {
	return &MemStorage{ids: slices.Clone(ids), saved: true}
}

func (store *MemStorage) Load(ctx context.Context) ([]model.ChatID, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if !store.saved {
		return nil, storage.ErrNotFound
	}
	return slices.Clone(store.ids), nil
}

func (store *MemStorage) Save(ctx context.Context, ids []model.ChatID) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.ids = slices.Clone(ids)
	store.saved = true
	store.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (store *MemStorage) Saves() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.saves
}

func (store *MemStorage) Ping(ctx context.Context) error {
	return nil
}
