package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/and161185/monitoring-bot/model"
	"github.com/and161185/monitoring-bot/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *RedisStorage {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	key := "monitoring-bot:test:" + t.Name()
	t.Cleanup(func() {
		_ = client.Del(context.Background(), key).Err()
		_ = client.Close()
	})
	return NewRedisStorageWithClient(client, key)
}

func TestRedisStorage_SaveAndLoad(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	_, err := st.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, st.Save(ctx, []model.ChatID{111, 222}))
	ids, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.ChatID{111, 222}, ids)

	require.NoError(t, st.Save(ctx, nil))
	_, err = st.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRedisStorage_Corrupt(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, st.client.RPush(ctx, st.key, "abc").Err())
	_, err := st.Load(ctx)
	require.ErrorIs(t, err, storage.ErrCorrupt)
}

func TestNewRedisStorage_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisStorage(ctx, "127.0.0.1:1", "", 0)
	require.Error(t, err)
}
