// File: storage/redis_store.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"nilakkal-parking/models"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps snapshots in a redis hash keyed by id. Ids come from an
// INCR counter so they keep increasing across restarts.
type RedisStore struct {
	client redis.UniversalClient
	name   string
}

var _ BackupStore = (*RedisStore)(nil)

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, app string) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("no Redis address provided")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStoreWithClient(client, app), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, app string) *RedisStore {
	return &RedisStore{client: client, name: DBName(app)}
}

func (s *RedisStore) tableKey() string  { return s.name + ":" + BackupsTable }
func (s *RedisStore) seqKey() string    { return s.name + ":" + BackupsTable + ":seq" }
func (s *RedisStore) eventsKey() string { return s.name + ":events" }

func (s *RedisStore) Add(ctx context.Context, snap models.BackupSnapshot) (models.BackupSnapshot, error) {
	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return models.BackupSnapshot{}, fmt.Errorf("failed to allocate snapshot id: %w", err)
	}
	snap.ID = id
	if snap.Data == nil {
		snap.Data = []models.VehicleRecord{}
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return models.BackupSnapshot{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.client.HSet(ctx, s.tableKey(), strconv.FormatInt(id, 10), payload).Err(); err != nil {
		return models.BackupSnapshot{}, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return snap, nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.BackupSnapshot, error) {
	raw, err := s.client.HGetAll(ctx, s.tableKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	out := make([]models.BackupSnapshot, 0, len(raw))
	for field, value := range raw {
		var snap models.BackupSnapshot
		if err := json.Unmarshal([]byte(value), &snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %s: %w", field, err)
		}
		out = append(out, snap)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id int64) (models.BackupSnapshot, error) {
	value, err := s.client.HGet(ctx, s.tableKey(), strconv.FormatInt(id, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return models.BackupSnapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return models.BackupSnapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap models.BackupSnapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		return models.BackupSnapshot{}, fmt.Errorf("failed to decode snapshot %d: %w", id, err)
	}
	return snap, nil
}

func (s *RedisStore) Delete(ctx context.Context, id int64) error {
	n, err := s.client.HDel(ctx, s.tableKey(), strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (s *RedisStore) AppendEvent(ctx context.Context, ev models.AuditEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.eventsKey(), payload)
	pipe.LTrim(ctx, s.eventsKey(), -maxEvents, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *RedisStore) Events(ctx context.Context) ([]models.AuditEvent, error) {
	raw, err := s.client.LRange(ctx, s.eventsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	out := make([]models.AuditEvent, 0, len(raw))
	for _, value := range raw {
		var ev models.AuditEvent
		if err := json.Unmarshal([]byte(value), &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
