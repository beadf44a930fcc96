package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

// Connect builds a redigo pool and verifies reachability with a PING.
func Connect(addr string) (*redis.Pool, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	pool := &redis.Pool{
		MaxIdle:     8,
		MaxActive:   64,
		IdleTimeout: 4 * time.Minute,
		Wait:        true,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", addr)
		},
		TestOnBorrow: func(conn redis.Conn, lastUsed time.Time) error {
			if time.Since(lastUsed) < time.Minute {
				return nil
			}
			_, err := conn.Do("PING")
			return err
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	defer conn.Close()
	if _, err := redis.DoContext(conn, ctx, "PING"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return pool, nil
}
