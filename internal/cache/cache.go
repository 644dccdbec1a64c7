// Package cache stores short-lived report results (dashboard KPIs, tranche
// summaries) so repeated dashboard loads do not re-run the aggregates.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key prefixes shared by the readers and invalidators of cached reports.
const (
	KeyDashboard      = "dashboard:"
	KeyTrancheSummary = "tranches:summary:"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate drops every key that starts with prefix.
	Invalidate(ctx context.Context, prefix string) error
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// Redis is a Cache backed by a redis server. Keys are namespaced.
type Redis struct {
	client    *redis.Client
	namespace string
	log       *zap.Logger
}

func NewRedis(client *redis.Client, namespace string, log *zap.Logger) *Redis {
	return &Redis{client: client, namespace: namespace, log: log}
}

func (r *Redis) key(k string) string {
	return r.namespace + ":" + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, r.key(prefix)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	r.log.Debug("Cache invalidated", zap.String("prefix", prefix), zap.Int("keys", len(keys)))
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
