package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/and161185/monitoring-bot/model"
	"github.com/and161185/monitoring-bot/storage"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	st := NewFileStorage(filepath.Join(t.TempDir(), "subscribers.json"))

	_, err := st.Load(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStorage(path).Load(context.Background())
	require.ErrorIs(t, err, storage.ErrCorrupt)
	require.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestLoad_StringIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.json")
	require.NoError(t, os.WriteFile(path, []byte(`["123", 456]`), 0o644))

	ids, err := NewFileStorage(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []model.ChatID{123, 456}, ids)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "subscribers.json")
	st := NewFileStorage(path)

	require.NoError(t, st.Save(ctx, []model.ChatID{111, -100200300, 222}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `[111,-100200300,222]`, string(raw))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.ChatID{111, -100200300, 222}, got)
}

func TestSave_NilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "subscribers.json")
	st := NewFileStorage(path)

	require.NoError(t, st.Save(ctx, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[]", string(raw))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSave_OverwritesAndLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "subscribers.json")
	st := NewFileStorage(path)

	require.NoError(t, st.Save(ctx, []model.ChatID{1, 2, 3}))
	require.NoError(t, st.Save(ctx, []model.ChatID{2}))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.ChatID{2}, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "subscribers.json", entries[0].Name())
}

func TestPing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileStorage(filepath.Join(dir, "s.json")).Ping(context.Background()))
	require.Error(t, NewFileStorage(filepath.Join(dir, "missing", "s.json")).Ping(context.Background()))
}
