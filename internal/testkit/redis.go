package testkit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisModule is the Redis instance under test, container-backed or external.
type RedisModule struct {
	container testcontainers.Container
	addr      string
}

// Addr returns host:port.
func (r *RedisModule) Addr() string { return r.addr }

// Terminate stops the container. External instances are left alone.
func (r *RedisModule) Terminate(ctx context.Context) error {
	if r.container == nil {
		return nil
	}
	return r.container.Terminate(ctx)
}

// StartRedis starts a Redis container, or wraps cfg.RedisAddr when set. The
// instance is pinged before returning.
func StartRedis(ctx context.Context, cfg *Config) (*RedisModule, error) {
	mod := &RedisModule{addr: cfg.RedisAddr}

	if mod.addr == "" {
		ctr, err := tcredis.Run(ctx, cfg.RedisImage)
		if err != nil {
			return nil, fmt.Errorf("start redis container: %w", err)
		}
		mod.container = ctr

		connStr, err := ctr.ConnectionString(ctx)
		if err != nil {
			_ = mod.Terminate(ctx)
			return nil, fmt.Errorf("get redis connection string: %w", err)
		}
		u, err := url.Parse(connStr)
		if err != nil {
			_ = mod.Terminate(ctx)
			return nil, fmt.Errorf("parse redis connection string %q: %w", connStr, err)
		}
		// go-redis and asynq take host:port
		mod.addr = u.Host
	}

	rdb := redis.NewClient(&redis.Options{Addr: mod.addr})
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = mod.Terminate(ctx)
		return nil, fmt.Errorf("ping redis at %s: %w", mod.addr, err)
	}
	return mod, nil
}
