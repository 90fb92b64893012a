package menu

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jimmynenos/ordering-backend/pkg/redis"
)

const catalogCacheName = "menu"

// Cache stores the serialized catalog in redis so restarts and repeated
// loads don't hammer the upstream. A nil Cache is a valid no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached catalog, or (nil, false) on a miss. Errors other
// than a miss are reported so the caller can log them; the caller still
// treats them as a miss.
func (c *Cache) Get(ctx context.Context) ([]Item, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.client.CatalogKey(catalogCacheName))
	if err != nil {
		if redis.IsMiss(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// Drop the corrupt entry so the next load starts clean.
		_ = c.client.Del(ctx, c.client.CatalogKey(catalogCacheName))
		return nil, false, err
	}
	return items, true, nil
}

// Put stores the catalog with the configured TTL.
func (c *Cache) Put(ctx context.Context, items []Item) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.client.CatalogKey(catalogCacheName), string(raw), c.ttl)
}
