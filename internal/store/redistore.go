package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizforge/mockexam-backend/internal/model"
)

// sessionKey is the single Redis key holding the session blob.
const sessionKey = "mockexam:session"

const redisOpTimeout = 2 * time.Second

// RedisStore persists the session blob under one Redis key, for setups that
// already run a Redis sidecar. Same whole-blob contract as FileStore.
type RedisStore struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisStore creates a RedisStore and verifies connectivity.
func NewRedisStore(ctx context.Context, rdb *redis.Client, log zerolog.Logger) (*RedisStore, error) {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{
		rdb: rdb,
		log: log.With().Str("component", "redis_store").Logger(),
	}, nil
}

// Save writes the state blob. Returns false on any failure.
func (s *RedisStore) Save(state *model.SessionState) bool {
	data, err := json.Marshal(state)
	if err != nil {
		s.log.Warn().Err(err).Msg("Serialize session state failed")
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.rdb.Set(ctx, sessionKey, data, 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Write session blob to redis failed")
		return false
	}
	return true
}

// Load reads the state blob. Returns nil if absent or corrupt.
func (s *RedisStore) Load() *model.SessionState {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := s.rdb.Get(ctx, sessionKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("Read session blob from redis failed")
		}
		return nil
	}

	var state model.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Warn().Err(err).Msg("Corrupt session blob in redis, ignoring")
		return nil
	}
	return &state
}

// Clear deletes the stored blob.
func (s *RedisStore) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.rdb.Del(ctx, sessionKey).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Delete session blob from redis failed")
	}
}
