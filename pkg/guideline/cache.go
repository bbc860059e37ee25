package guideline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TextCache keeps normalized guideline text keyed by document hash so a
// document uploaded repeatedly is only run through PDF extraction once.
type TextCache interface {
	Get(ctx context.Context, hash string) (string, bool, error)
	Set(ctx context.Context, hash string, text string) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(hash string) string {
	return fmt.Sprintf("guideline:text:%s", hash)
}

func (c *RedisCache) Get(ctx context.Context, hash string) (string, bool, error) {
	text, err := c.client.Get(ctx, cacheKey(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *RedisCache) Set(ctx context.Context, hash string, text string) error {
	return c.client.Set(ctx, cacheKey(hash), text, c.ttl).Err()
}
