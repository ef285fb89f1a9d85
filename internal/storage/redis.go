// Package storage provides access to the route key-value store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable indicates the backing store could not be reached or
// answered with a connection-level error. Callers map it to a 5xx response.
var ErrUnavailable = errors.New("route store unavailable")

// RouteStore is the interface the route service uses to talk to the
// backing key-value store. All methods are safe for concurrent use.
type RouteStore interface {
	// Get returns the value stored under key. The second return value is
	// false when the key does not exist; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// MGet fetches many keys in one round trip. The result is aligned with
	// the input: a nil entry means the key did not exist. An empty input
	// returns an empty result without contacting the store.
	MGet(ctx context.Context, keys []string) ([]*string, error)

	// ScanKeys streams every key matching the given pattern to fn without
	// buffering the full key space. A non-nil error from fn stops the scan.
	ScanKeys(ctx context.Context, match string, fn func(key string) error) error
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Password string
	DB       int
	PoolSize int
}

// RedisStore is the Redis-backed RouteStore.
type RedisStore struct {
	client *redis.Client
}

// scanCount is the COUNT hint passed to SCAN. The key space can be large
// (one key per callsign seen by the route pipeline), so keys are streamed
// in chunks rather than fetched with KEYS.
const scanCount = 512

// OpenRedis connects to Redis and verifies the connection with a ping.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 50
	}

	client := redis.NewClient(&redis.Options{
		Addr:         withDefaultPort(cfg.Host),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

func (s *RedisStore) MGet(ctx context.Context, keys []string) ([]*string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: mget %d keys: %v", ErrUnavailable, len(keys), err)
	}

	out := make([]*string, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		if sv, ok := v.(string); ok {
			out[i] = &sv
		}
	}
	return out, nil
}

func (s *RedisStore) ScanKeys(ctx context.Context, match string, fn func(key string) error) error {
	iter := s.client.Scan(ctx, 0, match, scanCount).Iterator()
	for iter.Next(ctx) {
		if err := fn(iter.Val()); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan %s: %v", ErrUnavailable, match, err)
	}
	return nil
}

// withDefaultPort appends the default Redis port when the configured host
// has none, so redis_host can be a bare hostname or host:port.
func withDefaultPort(host string) string {
	if host == "" {
		host = "127.0.0.1"
	}
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return host
		}
	}
	return host + ":6379"
}
