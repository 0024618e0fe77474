package ai

import (
	"context"
	"encoding/json"
	"time"

	"nexia/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "nexia:session:"

// RedisSessionStore keeps each conversation as one JSON value with a TTL
// that is refreshed on every save.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return session.Messages, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, userID string, messages []models.ChatMessage) error {
	b, err := json.Marshal(models.Session{Messages: messages})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+userID, b, s.ttl).Err()
}

func (s *RedisSessionStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+userID).Err()
}
