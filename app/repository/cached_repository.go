package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const listCachePrefix = "caps:list:"

// cachedCollection keeps list results in redis until the next write. Any
// redis failure falls through to the wrapped collection.
type cachedCollection[T any] struct {
	next   Collection[T]
	client *redis.Client
	name   string
	ttl    time.Duration
}

// WithListCache wraps both collections with a redis list cache
func (r *Repositories) WithListCache(client *redis.Client, ttl time.Duration) *Repositories {
	return &Repositories{
		Drafts:  NewCachedCollection[models.Draft](r.Drafts, client, "drafts", ttl),
		Reports: NewCachedCollection[models.Report](r.Reports, client, "reports", ttl),
	}
}

// NewCachedCollection wraps next with a list cache stored under name
func NewCachedCollection[T any](next Collection[T], client *redis.Client, name string, ttl time.Duration) Collection[T] {
	return &cachedCollection[T]{next: next, client: client, name: name, ttl: ttl}
}

func (c *cachedCollection[T]) key(opts ListOptions) string {
	if opts.WithPhotos {
		return listCachePrefix + c.name + ":photos"
	}
	return listCachePrefix + c.name
}

func (c *cachedCollection[T]) invalidate(ctx context.Context) {
	err := c.client.Del(ctx, c.key(ListOptions{}), c.key(ListOptions{WithPhotos: true})).Err()
	if err != nil {
		log.Warnf("[Store] list cache invalidation for %s failed: %v", c.name, err)
	}
}

// List serves from the cache when possible
func (c *cachedCollection[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	key := c.key(opts)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	} else if err != redis.Nil {
		log.Warnf("[Store] list cache read for %s failed: %v", c.name, err)
	}

	items, err := c.next.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Warnf("[Store] list cache write for %s failed: %v", c.name, err)
		}
	}
	return items, nil
}

// Get always reads through
func (c *cachedCollection[T]) Get(ctx context.Context, id int64) (*T, error) {
	return c.next.Get(ctx, id)
}

// Upsert writes through and drops cached lists
func (c *cachedCollection[T]) Upsert(ctx context.Context, item *T) error {
	if err := c.next.Upsert(ctx, item); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete writes through and drops cached lists
func (c *cachedCollection[T]) Delete(ctx context.Context, id int64) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}
