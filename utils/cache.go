package utils

import (
	"context"
	"fmt"
	"time"

	"nexia/config"

	"github.com/go-redis/redis/v8"
)

// NewSessionRedis connects the client used for conversation history and
// verifies it with a ping.
func NewSessionRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisSessionDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis (sessions) at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}
