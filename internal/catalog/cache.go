package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookmook/storefront/internal/sheet"
)

// ErrCacheMiss is returned by RowCache.Load when no snapshot is stored.
var ErrCacheMiss = errors.New("catalog cache miss")

// RowCache keeps the last fetched row snapshot so bursts of page views do
// not each download the sheet. Only raw rows are cached; prices are derived
// on every read.
type RowCache interface {
	Load(ctx context.Context) ([]sheet.Row, error)
	Store(ctx context.Context, rows []sheet.Row) error
}

const rowSnapshotKey = "catalog:rows:v1"

// RedisRowCache stores the snapshot as JSON under a single key with a TTL.
type RedisRowCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRowCache(client *redis.Client, ttl time.Duration) *RedisRowCache {
	return &RedisRowCache{client: client, ttl: ttl}
}

func (c *RedisRowCache) Load(ctx context.Context) ([]sheet.Row, error) {
	data, err := c.client.Get(ctx, rowSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to load row snapshot: %w", err)
	}

	var rows []sheet.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode row snapshot: %w", err)
	}

	return rows, nil
}

func (c *RedisRowCache) Store(ctx context.Context, rows []sheet.Row) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode row snapshot: %w", err)
	}

	if err := c.client.Set(ctx, rowSnapshotKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store row snapshot: %w", err)
	}

	return nil
}
