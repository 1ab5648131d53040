// Package subscribers manages the set of chats subscribed to status reports.
package subscribers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/and161185/monitoring-bot/model"
	"github.com/and161185/monitoring-bot/storage"
	"go.uber.org/zap"
)

// Registry serializes every read-modify-write of the subscriber list,
// so concurrent subscribe/unsubscribe requests never lose updates.
type Registry struct {
	store  storage.Storage
	logger *zap.SugaredLogger
	mu     sync.Mutex
}

func NewRegistry(store storage.Storage, logger *zap.SugaredLogger) *Registry {
	return &Registry{store: store, logger: logger}
}

// Subscribe adds id unless it is already present. added reports whether the list changed.
func (r *Registry) Subscribe(ctx context.Context, id model.ChatID) (added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(ids, id) {
		return false, nil
	}

	if err := r.store.Save(ctx, append(ids, id)); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", id, err)
	}
	return true, nil
}

// Unsubscribe removes id if present. removed reports whether the list changed.
func (r *Registry) Unsubscribe(ctx context.Context, id model.ChatID) (removed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	idx := slices.Index(ids, id)
	if idx < 0 {
		return false, nil
	}

	if err := r.store.Save(ctx, slices.Delete(ids, idx, idx+1)); err != nil {
		return false, fmt.Errorf("unsubscribe %s: %w", id, err)
	}
	return true, nil
}

// List returns the current subscribers in insertion order.
func (r *Registry) List(ctx context.Context) ([]model.ChatID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

// load treats a missing or corrupt list as empty. Corruption is logged
// because the next save overwrites whatever is stored. Any other error is
// returned, so a store that cannot be read is never overwritten.
func (r *Registry) load(ctx context.Context) ([]model.ChatID, error) {
	ids, err := r.store.Load(ctx)
	switch {
	case err == nil:
		return dedup(ids), nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	case errors.Is(err, storage.ErrCorrupt):
		r.logger.Errorw("subscriber list is corrupt, starting from empty list", "error", err)
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}
}

func dedup(ids []model.ChatID) []model.ChatID {
	out := make([]model.ChatID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
