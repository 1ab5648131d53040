// Package redis keeps the subscriber list in a Redis list.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/and161185/monitoring-bot/model"
	"github.com/and161185/monitoring-bot/storage"
	"github.com/redis/go-redis/v9"
)

const DefaultKey = "monitoring-bot:subscribers"

type RedisStorage struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStorage connects to addr and verifies the connection.
func NewRedisStorage(ctx context.Context, addr, password string, db int) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", addr, err)
	}

	return NewRedisStorageWithClient(client, DefaultKey), nil
}

func NewRedisStorageWithClient(client redis.UniversalClient, key string) *RedisStorage {
	return &RedisStorage{client: client, key: key}
}

// Load returns storage.ErrNotFound when the key does not exist.
func (store *RedisStorage) Load(ctx context.Context) ([]model.ChatID, error) {
	n, err := store.client.Exists(ctx, store.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check key: %w", err)
	}
	if n == 0 {
		return nil, storage.ErrNotFound
	}

	vals, err := store.client.LRange(ctx, store.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read subscribers: %w", err)
	}

	ids := make([]model.ChatID, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q: %v", storage.ErrCorrupt, v, err)
		}
		ids = append(ids, model.ChatID(id))
	}
	return ids, nil
}

// Save replaces the list in a single MULTI/EXEC transaction. Redis drops
// empty lists, so saving no ids makes the next Load report storage.ErrNotFound.
func (store *RedisStorage) Save(ctx context.Context, ids []model.ChatID) error {
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, store.key)
		if len(ids) == 0 {
			return nil
		}
		vals := make([]any, 0, len(ids))
		for _, id := range ids {
			vals = append(vals, id.String())
		}
		pipe.RPush(ctx, store.key, vals...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save subscribers: %w", err)
	}
	return nil
}

func (store *RedisStorage) Ping(ctx context.Context) error {
	return store.client.Ping(ctx).Err()
}

func (store *RedisStorage) Close() error {
	return store.client.Close()
}
