package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})
}

// Connect builds a client and fails if the server does not answer a ping.
func Connect(ctx context.Context, addr, pass string, db int) (*redis.Client, error) {
	c := NewRedisClient(addr, pass, db)
	if err := Ping(ctx, c); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return c, nil
}

func Ping(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}
