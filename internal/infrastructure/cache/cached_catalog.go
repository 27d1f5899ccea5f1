package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/ticket"
	"go.uber.org/zap"
)

// CachedMenuCatalog is a read-through ticket.MenuCatalog. Cache failures are
// logged and the lookup falls through to the source catalog.
type CachedMenuCatalog struct {
	source ticket.MenuCatalog
	cache  MenuCache
	ttl    time.Duration
	logger *zap.Logger

	hits   int64
	misses int64
}

// NewCachedMenuCatalog wraps source with cache
func NewCachedMenuCatalog(source ticket.MenuCatalog, cache MenuCache, ttl time.Duration, logger *zap.Logger) *CachedMenuCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedMenuCatalog{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// GetMenuItem returns the cached item or loads it from the source
func (c *CachedMenuCatalog) GetMenuItem(ctx context.Context, id uuid.UUID) (*ticket.MenuItem, error) {
	item, err := c.cache.Get(ctx, id)
	if err != nil {
		c.logger.Warn("Menu cache read failed", zap.String("menu_item_id", id.String()), zap.Error(err))
	}
	if item != nil {
		atomic.AddInt64(&c.hits, 1)
		return item, nil
	}
	atomic.AddInt64(&c.misses, 1)

	item, err = c.source.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, item, c.ttl); err != nil {
		c.logger.Warn("Menu cache write failed", zap.String("menu_item_id", id.String()), zap.Error(err))
	}
	return item, nil
}

// Invalidate drops one item, typically after the menu was edited
func (c *CachedMenuCatalog) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.cache.Delete(ctx, id)
}

// GetStats returns hit and miss counters
func (c *CachedMenuCatalog) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

var _ ticket.MenuCatalog = (*CachedMenuCatalog)(nil)
