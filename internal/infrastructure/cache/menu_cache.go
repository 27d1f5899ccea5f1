package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/ticket"
	"go.uber.org/zap"
)

const (
	defaultCleanupInterval = 30 * time.Second
	defaultMenuTTL         = 5 * time.Minute
)

// MenuCache stores menu items by id. Get returns (nil, nil) on a miss.
type MenuCache interface {
	Get(ctx context.Context, id uuid.UUID) (*ticket.MenuItem, error)
	Set(ctx context.Context, item *ticket.MenuItem, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     *T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryMenuCache keeps menu items in process memory. Expired entries are
// dropped on read and by a background sweeper.
type InMemoryMenuCache struct {
	items   sync.Map // map[uuid.UUID]*cacheEntry[ticket.MenuItem]
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// InMemoryMenuCacheOption configures an InMemoryMenuCache
type InMemoryMenuCacheOption func(*InMemoryMenuCache)

// WithInMemoryTTL sets the TTL used when Set is called with a zero ttl
func WithInMemoryTTL(ttl time.Duration) InMemoryMenuCacheOption {
	return func(c *InMemoryMenuCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryMenuCacheOption {
	return func(c *InMemoryMenuCache) {
		c.logger = logger
	}
}

// withNow replaces the time source; tests use it to expire entries
func withNow(now func() time.Time) InMemoryMenuCacheOption {
	return func(c *InMemoryMenuCache) {
		c.now = now
	}
}

// NewInMemoryMenuCache creates the cache and starts its sweeper. Call Close
// to stop the sweeper.
func NewInMemoryMenuCache(opts ...InMemoryMenuCacheOption) *InMemoryMenuCache {
	c := &InMemoryMenuCache{
		ttl:    defaultMenuTTL,
		logger: zap.NewNop(),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()
	return c
}

// Get returns the cached item or nil
func (c *InMemoryMenuCache) Get(ctx context.Context, id uuid.UUID) (*ticket.MenuItem, error) {
	if value, ok := c.items.Load(id); ok {
		entry := value.(*cacheEntry[ticket.MenuItem])
		if !entry.isExpired(c.now()) {
			atomic.AddInt64(&c.hits, 1)
			return entry.value, nil
		}
		c.items.Delete(id)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("Menu cache miss", zap.String("menu_item_id", id.String()))
	return nil, nil
}

// Set stores item. A zero ttl uses the configured default.
func (c *InMemoryMenuCache) Set(ctx context.Context, item *ticket.MenuItem, ttl time.Duration) error {
	if item == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.items.Store(item.ID, &cacheEntry[ticket.MenuItem]{
		value:     item,
		expiresAt: c.now().Add(ttl),
	})
	return nil
}

// Delete removes the item
func (c *InMemoryMenuCache) Delete(ctx context.Context, id uuid.UUID) error {
	c.items.Delete(id)
	return nil
}

// InvalidateAll drops every entry
func (c *InMemoryMenuCache) InvalidateAll() {
	c.items.Range(func(key, _ any) bool {
		c.items.Delete(key)
		return true
	})
	c.logger.Info("Invalidated menu cache")
}

// Close stops the sweeper. It is safe to call more than once.
func (c *InMemoryMenuCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns hit and miss counters
func (c *InMemoryMenuCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of stored entries, expired ones included
func (c *InMemoryMenuCache) Count() int {
	n := 0
	c.items.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryMenuCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in menu cache cleanup", zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

func (c *InMemoryMenuCache) doCleanup() int {
	removed := 0
	now := c.now()
	c.items.Range(func(key, value any) bool {
		if value.(*cacheEntry[ticket.MenuItem]).isExpired(now) {
			c.items.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired menu cache entries", zap.Int("removed", removed))
	}
	return removed
}

var _ MenuCache = (*InMemoryMenuCache)(nil)
