package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces session keys so the client can share a
// database with the rate limiter.
const redisKeyPrefix = "sess:"

// RedisStore persists sessions in Redis as JSON values with a TTL, so
// idle expiry is handled by the server and sessions survive process
// restarts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore using the provided client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, token string) (Session, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// Unreadable payload is treated as no session; the visitor just
		// starts over.
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *RedisStore) Set(ctx context.Context, token string, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+token, raw, s.ttl).Err()
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, redisKeyPrefix+token).Err()
}
