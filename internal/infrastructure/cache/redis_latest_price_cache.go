package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appmarket "github.com/JBeggs/fambrifarms-backend-sub002/internal/application/market"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/market"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultLatestPriceKeyPrefix = "market:latest:"

// RedisLatestPriceCache implements LatestPriceCache using Redis. Suitable for
// distributed deployments where multiple instances share cache state.
// Redis failures degrade to cache misses; the read path falls back to the
// repository and the observation ingest path proceeds without invalidation
// errors surfacing to callers.
type RedisLatestPriceCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisLatestPriceCache creates a new Redis-backed latest price cache
func NewRedisLatestPriceCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisLatestPriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisLatestPriceCache{
		client:    client,
		keyPrefix: defaultLatestPriceKeyPrefix,
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// NewRedisLatestPriceCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisLatestPriceCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisLatestPriceCache {
	if keyPrefix == "" {
		keyPrefix = defaultLatestPriceKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLatestPriceCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

func (c *RedisLatestPriceCache) key(productID uuid.UUID) string {
	return c.keyPrefix + productID.String()
}

// Get retrieves the cached latest observation for a product
func (c *RedisLatestPriceCache) Get(ctx context.Context, productID uuid.UUID) (*market.MarketPrice, bool) {
	data, err := c.client.Get(ctx, c.key(productID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Redis latest price lookup failed",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
		return nil, false
	}

	var price market.MarketPrice
	if err := json.Unmarshal(data, &price); err != nil {
		c.logger.Warn("Corrupt latest price cache entry",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		c.client.Del(ctx, c.key(productID))
		return nil, false
	}

	return &price, true
}

// Set stores an observation as the product's latest
func (c *RedisLatestPriceCache) Set(ctx context.Context, productID uuid.UUID, price *market.MarketPrice) {
	if price == nil {
		return
	}

	data, err := json.Marshal(price)
	if err != nil {
		c.logger.Warn("Failed to serialize latest price for cache",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, c.key(productID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache latest price",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

// Invalidate removes the cached observation for a product
func (c *RedisLatestPriceCache) Invalidate(ctx context.Context, productID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(productID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate latest price cache entry",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisLatestPriceCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisLatestPriceCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisLatestPriceCache implements LatestPriceCache
var _ appmarket.LatestPriceCache = (*RedisLatestPriceCache)(nil)
