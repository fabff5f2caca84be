package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// codeKeyPrefix namespaces room access code keys.
	codeKeyPrefix = "code:"

	// historyKeyPrefix namespaces room history list keys.
	historyKeyPrefix = "history:"
)

// redisStore is the durable Store implementation backed by Redis.
// Codes are plain string keys written with SETNX; history is a Redis list
// pushed from the left and trimmed to the configured length, so index 0 is
// always the newest entry.
type redisStore struct {
	client     *redis.Client
	historyLen int
}

// NewRedisStore returns a Store backed by the given Redis client, retaining
// at most historyLen messages per room.
func NewRedisStore(client *redis.Client, historyLen int) Store {
	return &redisStore{
		client:     client,
		historyLen: historyLen,
	}
}

func (s *redisStore) GetCode(ctx context.Context, roomID string) (string, error) {
	code, err := s.client.Get(ctx, codeKeyPrefix+roomID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", fmt.Errorf("redis get code: %w", err)
	}

	return code, nil
}

func (s *redisStore) SetCode(ctx context.Context, roomID string, code string) error {
	set, err := s.client.SetNX(ctx, codeKeyPrefix+roomID, code, 0).Result()
	if err != nil {
		return fmt.Errorf("redis set code: %w", err)
	}

	if !set {
		return ErrCodeExists
	}

	return nil
}

func (s *redisStore) AppendHistory(ctx context.Context, roomID string, data []byte) error {
	key := historyKeyPrefix + roomID

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(s.historyLen-1))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append history: %w", err)
	}

	return nil
}

func (s *redisStore) History(ctx context.Context, roomID string) ([][]byte, error) {
	entries, err := s.client.LRange(ctx, historyKeyPrefix+roomID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read history: %w", err)
	}

	// The list is newest-first; callers expect oldest-first.
	history := make([][]byte, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		history = append(history, []byte(entries[i]))
	}

	return history, nil
}

func (s *redisStore) HealthCheck(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}
