package middleware

import (
	"context"
	"log/slog"
	"time"

	"villarent/internal/app/apperr"
	"villarent/internal/app/queries"
)

// QueryLogging records key, duration and outcome of every query.
// Client errors are logged at info, everything else that fails at error.
func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		return nil
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, q)
			elapsed := time.Since(start)
			switch kind := apperr.KindOf(err); {
			case err == nil:
				logger.Debug("query handled", "query", q.Key(), "duration", elapsed)
			case kind != "":
				logger.Info("query rejected", "query", q.Key(), "kind", string(kind), "reason", err.Error(), "duration", elapsed)
			default:
				logger.Error("query failed", "query", q.Key(), "error", err, "duration", elapsed)
			}
			return res, err
		})
	}
}
