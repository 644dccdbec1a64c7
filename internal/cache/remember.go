package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Remember returns the cached JSON value for key, or calls load and caches
// its result. Cache failures are logged and fall through to load.
func Remember[T any](ctx context.Context, c Cache, log *zap.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err != nil {
		log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		log.Warn("Dropping undecodable cache entry", zap.String("key", key))
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		if err := c.Set(ctx, key, raw, ttl); err != nil {
			log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}
