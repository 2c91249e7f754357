// file: storage/redis_store_test.go
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"
	"nilakkal-parking/models"
)

// newTestRedisStore runs a RedisStore against an in-process redis.
func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, "nilakkal-police")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRedisStore_MissingAddress(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{}, "nilakkal-police")
	assert.Error(t, err)
}

func TestNewRedisStore_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisConfig{Addr: mr.Addr()}, "nilakkal-police")
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestRedisStore_KeyLayout(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	store := NewRedisStoreWithClient(client, "nilakkal-police")
	assert.Equal(t, "nilakkal-police-backup-db:backups", store.tableKey())
	assert.Equal(t, "nilakkal-police-backup-db:backups:seq", store.seqKey())
	assert.Equal(t, "nilakkal-police-backup-db:events", store.eventsKey())
}

// Test: ids are assigned sequentially and List is newest first
func TestRedisStore_AddAndList(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	first, err := store.Add(ctx, testSnapshot(base, "KL-01-AA-1111"))
	require.NoError(t, err)
	second, err := store.Add(ctx, testSnapshot(base.Add(time.Hour), "KL-01-AA-2222"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.True(t, mr.Exists(store.tableKey()))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID, "newest snapshot should come first")
	assert.Equal(t, int64(1), list[1].ID)
	assert.Equal(t, "KL-01-AA-1111", list[1].Data[0].Plate)
}

// Test: Get and Delete report ErrSnapshotNotFound for unknown ids
func TestRedisStore_GetDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	snap := testSnapshot(time.Now(), "KL-07-BB-1234")
	snap.Data[0].TimeOut = null.StringFrom("2025-01-10T09:00:00Z")
	saved, err := store.Add(ctx, snap)
	require.NoError(t, err)

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "KL-07-BB-1234", got.Data[0].Plate)
	assert.True(t, got.Data[0].CheckedOut())

	_, err = store.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.ErrorIs(t, store.Delete(ctx, 99), ErrSnapshotNotFound)

	require.NoError(t, store.Delete(ctx, saved.ID))
	_, err = store.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	next, err := store.Add(ctx, testSnapshot(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, saved.ID+1, next.ID, "ids are never reused")
	assert.NotNil(t, next.Data)
}

// Test: the audit log keeps order and is bounded
func TestRedisStore_EventsBounded(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.AppendEvent(ctx, models.AuditEvent{Kind: models.EventVehicleEntered, Plate: "first"}))
	for i := 0; i < maxEvents+4; i++ {
		require.NoError(t, store.AppendEvent(ctx, models.AuditEvent{Kind: models.EventVehicleExited, Plate: "later"}))
	}

	events, err := store.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, events, maxEvents)
	assert.Equal(t, "later", events[0].Plate, "oldest events are trimmed first")
}

// Test: a lost connection surfaces as an error
func TestRedisStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, err := store.Add(ctx, testSnapshot(time.Now(), "KL-01"))
	assert.Error(t, err)
	_, err = store.List(ctx)
	assert.Error(t, err)
}
