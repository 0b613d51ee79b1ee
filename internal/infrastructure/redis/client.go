package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ClientConfig configures the Redis client.
type ClientConfig struct {
	RedisURL       string
	ConnectRetries int
	Logger         zerolog.Logger
}

// NewClient creates a new Redis client.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithConfig(ctx, ClientConfig{RedisURL: redisURL, Logger: zerolog.Nop()})
}

// NewClientWithConfig creates a client and pings it until it answers or the
// retries run out.
func NewClientWithConfig(ctx context.Context, cfg ClientConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}

	attempt := 0
	ping := func() error {
		attempt++
		err := client.Ping(ctx).Err()
		if err != nil {
			cfg.Logger.Warn().Err(err).Int("attempt", attempt).Msg("redis not ready")
		}
		return err
	}

	if err := backoff.Retry(ping, backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
