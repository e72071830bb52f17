package health

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var errNotConfigured = errors.New("not configured")

// RedisProbe checks the session and cache store.
func RedisProbe(client *redis.Client, timeout time.Duration) Probe {
	var target Pinger
	if client != nil {
		target = PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	}
	return Probe{Name: "redis", Target: target, Timeout: timeout}
}

// PostgresProbe checks the catalog database. pool is typically a *pgxpool.Pool.
func PostgresProbe(pool Pinger, timeout time.Duration) Probe {
	return Probe{Name: "db", Target: pool, Timeout: timeout}
}
