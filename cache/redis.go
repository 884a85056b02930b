// Package cache holds catalog read responses and login attempt counters in
// Redis. A nil *Redis behaves as a permanently empty cache that allows every
// request, so the API keeps working without Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or the cache is disabled.
var ErrMiss = errors.New("cache: miss")

const (
	// CatalogPrefix covers every cached platform and game response.
	CatalogPrefix = "catalog:"
	// RateLimitPrefix keys login attempt counters, ratelimit:login:<ip>.
	RateLimitPrefix = "ratelimit:"

	CatalogTTL = 5 * time.Minute

	// catalogGenerationKey counts catalog writes. It sits outside CatalogPrefix
	// so invalidation never deletes it.
	catalogGenerationKey = "catalog-generation"
)

// CatalogKey builds a catalog key, e.g. CatalogKey("games", id).
func CatalogKey(parts ...string) string {
	key := CatalogPrefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

type Options struct {
	Addr     string
	Password string
}

type Redis struct {
	client *redis.Client
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts Options) (*Redis, error) {
	addr := opts.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     opts.Password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string, dest any) error {
	if r == nil {
		return ErrMiss
	}
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// CatalogGeneration returns the number of catalog invalidations so far.
// Readers key their entries with it, so a response loaded before a write
// and stored after it is never served.
func (r *Redis) CatalogGeneration(ctx context.Context) (int64, error) {
	if r == nil {
		return 0, nil
	}
	n, err := r.client.Get(ctx, catalogGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("catalog generation: %w", err)
	}
	return n, nil
}

// InvalidateCatalog bumps the catalog generation and drops every cached
// platform and game response.
func (r *Redis) InvalidateCatalog(ctx context.Context) error {
	if r == nil {
		return nil
	}
	if err := r.client.Incr(ctx, catalogGenerationKey).Err(); err != nil {
		return fmt.Errorf("bump catalog generation: %w", err)
	}
	iter := r.client.Scan(ctx, 0, CatalogPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Allow counts one attempt against key in a fixed window. It returns false
// and the time left in the window once max attempts have been made.
func (r *Redis) Allow(ctx context.Context, key string, max int, window time.Duration) (bool, time.Duration, error) {
	if r == nil {
		return true, 0, nil
	}
	key = RateLimitPrefix + key

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	if incr.Val() > int64(max) {
		return false, ttl.Val(), nil
	}
	return true, 0, nil
}
