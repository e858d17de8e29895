package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "village:session:"

// RedisStore keeps profiles in Redis with an expiry.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store whose keys expire after ttl.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, key string, p Profile) error {
	p.SavedAt = time.Now()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (Profile, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Profile{}, ErrNoSession
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load session: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
