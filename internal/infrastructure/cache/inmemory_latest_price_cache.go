package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	appmarket "github.com/JBeggs/fambrifarms-backend-sub002/internal/application/market"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/market"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryLatestPriceCache implements LatestPriceCache using in-memory storage.
// Suitable for single-instance deployments and as an L1 cache in front of Redis.
type InMemoryLatestPriceCache struct {
	entries sync.Map // map[uuid.UUID]*priceEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// priceEntry wraps a cached observation with its expiration time
type priceEntry struct {
	price     *market.MarketPrice
	expiresAt time.Time
}

func (e *priceEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryLatestPriceCacheOption is a functional option for configuring the cache
type InMemoryLatestPriceCacheOption func(*InMemoryLatestPriceCache)

// WithInMemoryTTL sets the entry TTL
func WithInMemoryTTL(ttl time.Duration) InMemoryLatestPriceCacheOption {
	return func(c *InMemoryLatestPriceCache) {
		c.ttl = ttl
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryLatestPriceCacheOption {
	return func(c *InMemoryLatestPriceCache) {
		c.logger = logger
	}
}

// NewInMemoryLatestPriceCache creates a new in-memory latest price cache
func NewInMemoryLatestPriceCache(opts ...InMemoryLatestPriceCacheOption) *InMemoryLatestPriceCache {
	cache := &InMemoryLatestPriceCache{
		ttl:    time.Hour,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves the cached latest observation for a product
func (c *InMemoryLatestPriceCache) Get(ctx context.Context, productID uuid.UUID) (*market.MarketPrice, bool) {
	if value, ok := c.entries.Load(productID); ok {
		entry := value.(*priceEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.price, true
		}
		c.entries.Delete(productID)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Set stores an observation as the product's latest
func (c *InMemoryLatestPriceCache) Set(ctx context.Context, productID uuid.UUID, price *market.MarketPrice) {
	if price == nil {
		return
	}

	c.entries.Store(productID, &priceEntry{
		price:     price,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Invalidate removes the cached observation for a product
func (c *InMemoryLatestPriceCache) Invalidate(ctx context.Context, productID uuid.UUID) {
	c.entries.Delete(productID)
	c.logger.Debug("Invalidated latest price cache entry",
		zap.String("product_id", productID.String()))
}

// Stats returns hit/miss counters for monitoring
func (c *InMemoryLatestPriceCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop terminates the background cleanup goroutine
func (c *InMemoryLatestPriceCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryLatestPriceCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				if value.(*priceEntry).isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryLatestPriceCache implements LatestPriceCache
var _ appmarket.LatestPriceCache = (*InMemoryLatestPriceCache)(nil)
