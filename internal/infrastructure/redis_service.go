package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"account-service/internal/config"
)

const sessionKeyPrefix = "session:"

// RedisService holds the server-side session records.
type RedisService struct {
	client *redis.Client
}

// NewRedisService connects using REDIS_URL when set, otherwise host/port.
func NewRedisService(ctx context.Context, cfg config.RedisConfig) (*RedisService, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("connected to redis", "addr", opts.Addr)
	return &RedisService{client: client}, nil
}

func (r *RedisService) SetSession(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+id, data, ttl).Err()
}

// GetSession returns (nil, nil) for unknown or expired sessions.
func (r *RedisService) GetSession(ctx context.Context, id string) ([]byte, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (r *RedisService) DeleteSession(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKeyPrefix+id).Err()
}

func (r *RedisService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisService) Close() error {
	return r.client.Close()
}
