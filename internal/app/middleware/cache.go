package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"villarent/internal/app/queries"
)

// ResultCache stores encoded query results.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cacheable is implemented by queries whose results may be served from cache.
// CacheKey must cover every input that changes the result.
type Cacheable interface {
	queries.Query
	CacheKey() string
	DecodeResult(data []byte) (any, error)
}

// QueryCache serves Cacheable queries from store. Failed queries are never stored
// and cache errors fall through to the wrapped bus.
func QueryCache(store ResultCache, ttl time.Duration, logger *slog.Logger) QueryMiddleware {
	if store == nil || ttl <= 0 {
		return nil
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			cq, ok := q.(Cacheable)
			if !ok {
				return nextFn(ctx, q)
			}
			key := q.Key() + ":" + cq.CacheKey()
			if data, hit, err := store.Get(ctx, key); err != nil {
				warn(logger, "query cache read failed", q.Key(), err)
			} else if hit {
				if res, err := cq.DecodeResult(data); err == nil {
					return res, nil
				}
			}
			res, err := nextFn(ctx, q)
			if err != nil {
				return nil, err
			}
			data, err := json.Marshal(res)
			if err != nil {
				warn(logger, "query cache encode failed", q.Key(), err)
				return res, nil
			}
			if err := store.Set(ctx, key, data, ttl); err != nil {
				warn(logger, "query cache write failed", q.Key(), err)
			}
			return res, nil
		})
	}
}

func warn(logger *slog.Logger, msg, key string, err error) {
	if logger == nil {
		return
	}
	logger.Warn(msg, "query", key, "error", err)
}
