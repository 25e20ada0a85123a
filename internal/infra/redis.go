package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions carries the pool tuning applied on top of the connection URL.
// Zero values keep the client library's defaults.
type RedisOptions struct {
	PoolSize     int
	MinIdleConns int
}

// NewRedis dials the job-queue broker and verifies it is reachable before
// the worker pool starts consuming from it.
func NewRedis(redisURL string, opts RedisOptions) (*redis.Client, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.PoolSize > 0 {
		parsed.PoolSize = opts.PoolSize
	}
	if opts.MinIdleConns > 0 {
		parsed.MinIdleConns = opts.MinIdleConns
	}

	rdb := redis.NewClient(parsed)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
