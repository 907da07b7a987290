package redis_test

import (
	"context"
	"testing"
	"todoTracker/internal/repository"
	"todoTracker/internal/repository/kv/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStorage_GetSet тестирует ключи с префиксом
func TestStorage_GetSet(t *testing.T) {
	ctx := context.Background()
	m := miniredis.RunT(t)

	storage, err := redis.New(ctx, m.Addr(), "todo:")
	require.NoError(t, err)
	defer storage.Close()

	_, err = storage.Get(ctx, "tasks")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, storage.Set(ctx, "tasks", "[]"))

	raw, err := m.Get("todo:tasks")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	value, err := storage.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
	assert.NoError(t, storage.HealthCheck(ctx))
}

// TestStorage_Unavailable тестирует недоступный сервер
func TestStorage_Unavailable(t *testing.T) {
	ctx := context.Background()
	m := miniredis.RunT(t)
	addr := m.Addr()
	m.Close()

	_, err := redis.New(ctx, addr, "todo:")
	assert.Error(t, err)
}
