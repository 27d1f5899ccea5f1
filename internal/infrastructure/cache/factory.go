package cache

import (
	"fmt"

	"github.com/pos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MenuCacheFactory creates menu caches based on configuration
type MenuCacheFactory struct {
	redisConfig           config.RedisConfig
	catalogConfig         config.CatalogConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// MenuCacheFactoryOption is a functional option for configuring the factory
type MenuCacheFactoryOption func(*MenuCacheFactory)

// WithLogger sets the logger for the factory and the caches it builds
func WithLogger(logger *zap.Logger) MenuCacheFactoryOption {
	return func(f *MenuCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) MenuCacheFactoryOption {
	return func(f *MenuCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewMenuCacheFactory creates a new factory
func NewMenuCacheFactory(redisCfg config.RedisConfig, catalogCfg config.CatalogConfig, opts ...MenuCacheFactoryOption) *MenuCacheFactory {
	f := &MenuCacheFactory{
		redisConfig:           redisCfg,
		catalogConfig:         catalogCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache connects a Redis-backed cache
func (f *MenuCacheFactory) CreateRedisCache() (MenuCache, error) {
	c, err := NewRedisMenuCache(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, WithRedisTTL(f.catalogConfig.CacheTTL), WithRedisLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis menu cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates a process-local cache
func (f *MenuCacheFactory) CreateInMemoryCache() MenuCache {
	return NewInMemoryMenuCache(WithInMemoryTTL(f.catalogConfig.CacheTTL), WithInMemoryLogger(f.logger))
}

// CreateCache returns a Redis cache when catalog.use_redis is set and Redis
// answers, otherwise an in-memory cache (unless fallback is disabled).
func (f *MenuCacheFactory) CreateCache() (MenuCache, error) {
	if !f.catalogConfig.UseRedis {
		f.logger.Info("using in-memory menu cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis menu cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for menu cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory menu cache", zap.Error(err))
	return f.CreateInMemoryCache(), nil
}
