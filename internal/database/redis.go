package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/worldatlas/internal/config"
)

// redisAttempts and redisBackoff bound how long startup waits for Redis to
// accept connections. The first backoff doubles after each failed ping.
const (
	redisAttempts = 5
	redisBackoff  = 250 * time.Millisecond
)

// NewRedis opens the console credential store. It gives up with the last
// ping error once redisAttempts pings have failed.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	if err := waitForRedis(context.Background(), rdb, redisAttempts, redisBackoff); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

func waitForRedis(ctx context.Context, rdb *redis.Client, attempts int, backoff time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		slog.Warn("redis not ready",
			slog.Int("attempt", i+1),
			slog.Duration("retry_in", backoff),
			slog.Any("error", err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
