// Package storage defines the subscriber list persistence contract.
package storage

import (
	"context"
	"errors"

	"github.com/and161185/monitoring-bot/model"
)

var (
	// ErrNotFound is returned by Load when nothing has been persisted yet.
	ErrNotFound = errors.New("subscribers not found")
	// ErrCorrupt is returned by Load when persisted data cannot be decoded.
	ErrCorrupt = errors.New("subscribers data is corrupt")
)

// Storage persists the whole subscriber list at once.
type Storage interface {
	Load(ctx context.Context) ([]model.ChatID, error)
	Save(ctx context.Context, ids []model.ChatID) error
	Ping(ctx context.Context) error
}
