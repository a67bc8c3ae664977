package redis

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "villarent:q"

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Cache stores query results under a generation number. Invalidate bumps the
// generation so every earlier entry becomes unreachable and expires by TTL.
type Cache struct {
	rdb    *goredis.Client
	prefix string
}

// Connect dials Redis and pings it with a short timeout.
func Connect(ctx context.Context, opts Options) (*Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return New(rdb, opts.Prefix), nil
}

func New(rdb *goredis.Client, prefix string) *Cache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Cache{rdb: rdb, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, false, err
	}
	data, err := c.rdb.Get(ctx, entryKey(c.prefix, gen, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: get: %w", err)
	}
	return data, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, entryKey(c.prefix, gen, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set: %w", err)
	}
	return nil
}

// Invalidate retires every cached result.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, generationKey(c.prefix)).Err(); err != nil {
		return fmt.Errorf("redis: bump generation: %w", err)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

func (c *Cache) generation(ctx context.Context) (int64, error) {
	raw, err := c.rdb.Get(ctx, generationKey(c.prefix)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis: read generation: %w", err)
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: malformed generation %q", raw)
	}
	return gen, nil
}

func generationKey(prefix string) string {
	return prefix + ":gen"
}

func entryKey(prefix string, gen int64, key string) string {
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("%s:%d:%x", prefix, gen, sum[:])
}
