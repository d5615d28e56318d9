// Package cache holds recently fetched snapshots so that repeated dashboard
// reads within the TTL do not hit the data source again.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// Keys used by the dashboard service.
const (
	KeyDemo = "demo"
	KeyLive = "live"
)

// SnapshotCache stores snapshots by key. Cached snapshots are shared and
// must be treated as read-only.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*models.Snapshot, bool)
	Set(ctx context.Context, key string, snap *models.Snapshot)
	Invalidate(ctx context.Context, key string)
	Purge(ctx context.Context)
}

// MemoryCache is an in-process LRU with per-entry expiry.
type MemoryCache struct {
	lru *expirable.LRU[string, *models.Snapshot]
}

// NewMemoryCache creates a memory cache. A non-positive ttl disables expiry.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 8
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryCache{lru: expirable.NewLRU[string, *models.Snapshot](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.Snapshot, bool) {
	return c.lru.Get(key)
}

func (c *MemoryCache) Set(_ context.Context, key string, snap *models.Snapshot) {
	c.lru.Add(key, snap)
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) {
	c.lru.Remove(key)
}

func (c *MemoryCache) Purge(_ context.Context) {
	c.lru.Purge()
}

// Len reports the number of live entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.Snapshot, bool) { return nil, false }
func (Nop) Set(context.Context, string, *models.Snapshot)        {}
func (Nop) Invalidate(context.Context, string)                   {}
func (Nop) Purge(context.Context)                                {}
