package cron

import (
	"context"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLockStore struct {
	values map[string]string
}

func (m *mapLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *mapLockStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *mapLockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	store := &mapLockStore{values: map[string]string{}}
	ctx := context.Background()
	first, err := NewRedisLock(store, "rawmart:maintenance:lock:test", "worker-a", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "rawmart:maintenance:lock:test", "worker-b", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(store.values["rawmart:maintenance:lock:test"], "worker-a/"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, second.Release(ctx))
	assert.Len(t, store.values, 1)

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockLeavesForeignLease(t *testing.T) {
	store := &mapLockStore{values: map[string]string{}}
	ctx := context.Background()
	lock, err := NewRedisLock(store, "k", "worker-a", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// the lease expired and another worker took over
	store.values["k"] = "worker-b/other"
	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "worker-b/other", store.values["k"])

	delete(store.values, "k")
	assert.NoError(t, lock.Release(ctx))
}

func TestNewRedisLockValidates(t *testing.T) {
	store := &mapLockStore{values: map[string]string{}}
	_, err := NewRedisLock(nil, "k", "a", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(store, "", "a", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(store, "k", "a", 0)
	assert.Error(t, err)
}
