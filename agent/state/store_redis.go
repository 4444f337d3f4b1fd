package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type RedisConfig struct {
	Addr      string        `envconfig:"ADDR" default:"localhost:6379"`
	Password  string        `envconfig:"PASSWORD"`
	DB        int           `envconfig:"DB" default:"0"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"pastel:session:"`
	TTL       time.Duration `envconfig:"TTL" default:"24h"`
}

// RedisStore persists SessionState as JSON strings in Redis.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    zerolog.Logger
}

// NewRedisStore connects and pings the server before returning.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreFromClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

func NewRedisStoreFromClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if strings.TrimSpace(keyPrefix) == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    log.With().Str("component", "redis_store").Logger(),
	}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	key, err := sessionKey(s.keyPrefix, sessionID)
	if err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decodeSession(raw)
}

func (s *RedisStore) Save(ctx context.Context, st *SessionState) error {
	key, payload, err := encodeSession(s.keyPrefix, st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	s.logger.Debug().Str("session_id", st.SessionID).Int("bytes", len(payload)).Msg("session saved")
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key, err := sessionKey(s.keyPrefix, sessionID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
