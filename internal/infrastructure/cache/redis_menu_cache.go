package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultMenuKeyPrefix = "pos:menu_item:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// RedisMenuCache stores menu items as JSON in Redis so every till behind the
// same Redis shares one catalog snapshot.
type RedisMenuCache struct {
	client     *redis.Client
	ownsClient bool
	keyPrefix  string
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisMenuCacheOption configures a RedisMenuCache
type RedisMenuCacheOption func(*RedisMenuCache)

// WithRedisTTL sets the TTL used when Set is called with a zero ttl
func WithRedisTTL(ttl time.Duration) RedisMenuCacheOption {
	return func(c *RedisMenuCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisMenuCacheOption {
	return func(c *RedisMenuCache) {
		c.logger = logger
	}
}

// WithKeyPrefix sets the key namespace
func WithKeyPrefix(prefix string) RedisMenuCacheOption {
	return func(c *RedisMenuCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// NewRedisMenuCache connects to Redis and verifies the connection with PING
func NewRedisMenuCache(cfg RedisConfig, opts ...RedisMenuCacheOption) (*RedisMenuCache, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisMenuCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisMenuCacheWithClient wraps an existing client. The caller keeps
// ownership of the client.
func NewRedisMenuCacheWithClient(client *redis.Client, opts ...RedisMenuCacheOption) *RedisMenuCache {
	c := &RedisMenuCache{
		client:    client,
		keyPrefix: defaultMenuKeyPrefix,
		ttl:       defaultMenuTTL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisMenuCache) key(id uuid.UUID) string {
	return c.keyPrefix + id.String()
}

// Get returns the cached item, nil on a miss
func (c *RedisMenuCache) Get(ctx context.Context, id uuid.UUID) (*ticket.MenuItem, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item from cache: %w", err)
	}

	var item ticket.MenuItem
	if err := json.Unmarshal(data, &item); err != nil {
		c.logger.Warn("Dropping corrupt menu cache entry",
			zap.String("menu_item_id", id.String()),
			zap.Error(err))
		_ = c.client.Del(ctx, c.key(id))
		return nil, nil
	}
	return &item, nil
}

// Set stores item. A zero ttl uses the configured default.
func (c *RedisMenuCache) Set(ctx context.Context, item *ticket.MenuItem, ttl time.Duration) error {
	if item == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal menu item: %w", err)
	}
	if err := c.client.Set(ctx, c.key(item.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set menu item in cache: %w", err)
	}
	return nil
}

// Delete removes the item
func (c *RedisMenuCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete menu item from cache: %w", err)
	}
	return nil
}

// Close closes the client when the cache created it
func (c *RedisMenuCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ MenuCache = (*RedisMenuCache)(nil)
