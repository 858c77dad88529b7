package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clio-platform/clio/internal/config"
)

// scanPageSize is the COUNT hint for each SCAN page.
const scanPageSize = 500

// transientReplies are server replies that clear up without intervention.
var transientReplies = []string{
	"LOADING", "READONLY", "MASTERDOWN", "CLUSTERDOWN", "TRYAGAIN", "NOREPLICAS", "BUSY",
	"max number of clients",
}

// classify marks server replies that a retry cannot fix, such as WRONGTYPE or
// NOPERM, as permanent. Network errors and timeouts stay retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var reply redis.Error
	if !errors.As(err, &reply) {
		return err
	}
	for _, prefix := range transientReplies {
		if redis.HasErrorPrefix(err, prefix) {
			return err
		}
	}
	return Permanent(err)
}

// RedisStore implements KVStore on a go-redis client.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisClient creates a Redis client from configuration and verifies the connection.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		ReadTimeout:  cfg.RedisOperationTimeout,
		WriteTimeout: cfg.RedisOperationTimeout,
		// Retries belong to the session retrier, which retries whole units of work.
		MaxRetries: -1,
	}
	if cfg.RedisSSL {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: cfg.RedisHost,
		}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}

// NewRedisStore wraps client. Each call gets its own timeout derived from the caller's context.
func NewRedisStore(client *redis.Client, timeout time.Duration) *RedisStore {
	return &RedisStore{client: client, timeout: timeout}
}

func (r *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Get returns the string value of key.
func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, classify(err)
	}
	return value, true, nil
}

// SetWithExpiry stores value under key for ttl.
func (r *RedisStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return classify(r.client.Set(ctx, key, value, ttl).Err())
}

// Expire resets the TTL of key.
func (r *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ok, err := r.client.Expire(ctx, key, ttl).Result()
	return ok, classify(err)
}

// Delete removes keys.
func (r *RedisStore) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.client.Del(ctx, keys...).Result()
	return n, classify(err)
}

// AddToSet adds member to the set and refreshes its TTL in one pipeline.
func (r *RedisStore) AddToSet(ctx context.Context, key, member string, ttl time.Duration) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipe := r.client.Pipeline()
	pipe.SAdd(ctx, key, member)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return classify(err)
}

// RemoveFromSet removes member from the set.
func (r *RedisStore) RemoveFromSet(ctx context.Context, key, member string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return classify(r.client.SRem(ctx, key, member).Err())
}

// SetMembers returns all members of the set.
func (r *RedisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	members, err := r.client.SMembers(ctx, key).Result()
	return members, classify(err)
}

// ScanKeys walks the keyspace with SCAN. Each page is its own bounded call, so a
// large keyspace never has to fit in memory or in a single timeout.
func (r *RedisStore) ScanKeys(ctx context.Context, pattern string, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.scanPage(ctx, cursor, pattern)
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (r *RedisStore) scanPage(ctx context.Context, cursor uint64, pattern string) ([]string, uint64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	keys, next, err := r.client.Scan(ctx, cursor, pattern, scanPageSize).Result()
	return keys, next, classify(err)
}

// Ping checks the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
