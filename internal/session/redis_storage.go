package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// KV is the minimal key-value surface the storage needs. Both the plain
// and the metrics-instrumented clients in pkg/redis satisfy it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	TxPipeline() goredis.Pipeliner
}

// RedisStorage persists the session snapshot in the device key-value
// store. The three entity keys are written in one transactional pipeline
// so a partially written snapshot is never observable.
type RedisStorage struct {
	client KV
	log    *slog.Logger
}

// NewRedisStorage creates a Redis-backed Storage implementation.
func NewRedisStorage(client KV, log *slog.Logger) *RedisStorage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
	}
}

var _ Storage = (*RedisStorage)(nil)

// Load rehydrates the persisted snapshot, or ErrSnapshotNotFound when no
// identity has been stored.
func (s *RedisStorage) Load(ctx context.Context) (*Snapshot, error) {
	userPayload, err := s.client.Get(ctx, KeyUser)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrSnapshotNotFound
		}

		s.log.Error("failed to load user from storage", slog.Any("error", err))
		return nil, fmt.Errorf("load user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(userPayload), &user); err != nil {
		s.log.Error("failed to decode persisted user", slog.Any("error", err))
		return nil, fmt.Errorf("decode user: %w", err)
	}

	snap := &Snapshot{User: &user}

	coinsPayload, err := s.client.Get(ctx, KeyCoins)
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("load coins: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal([]byte(coinsPayload), &snap.Coins); err != nil {
			return nil, fmt.Errorf("decode coins: %w", err)
		}
	}

	activitiesPayload, err := s.client.Get(ctx, KeyActivities)
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal([]byte(activitiesPayload), &snap.Activities); err != nil {
			return nil, fmt.Errorf("decode activities: %w", err)
		}
	}

	return snap, nil
}

// Save writes all three entity keys atomically.
func (s *RedisStorage) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil || snap.User == nil {
		return errors.New("cannot persist empty snapshot")
	}

	userPayload, err := json.Marshal(snap.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	coinsPayload, err := json.Marshal(snap.Coins)
	if err != nil {
		return fmt.Errorf("encode coins: %w", err)
	}

	activities := snap.Activities
	if activities == nil {
		activities = []domain.ActivityRecord{}
	}

	activitiesPayload, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("encode activities: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, KeyUser, userPayload, 0)
	pipe.Set(ctx, KeyCoins, coinsPayload, 0)
	pipe.Set(ctx, KeyActivities, activitiesPayload, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("failed to persist session snapshot", slog.Any("error", err))
		return fmt.Errorf("persist snapshot: %w", err)
	}

	return nil
}

// Clear removes every persisted session key.
func (s *RedisStorage) Clear(ctx context.Context) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, KeyUser)
	pipe.Del(ctx, KeyCoins)
	pipe.Del(ctx, KeyActivities)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("failed to clear session snapshot", slog.Any("error", err))
		return fmt.Errorf("clear snapshot: %w", err)
	}

	return nil
}
