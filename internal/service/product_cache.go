package service

import (
	"slices"
	"sync"
	"time"

	"calzado-imperial/internal/domain"
)

// DefaultCatalogCacheTTL is how long a full catalog read stays fresh
const DefaultCatalogCacheTTL = 5 * time.Minute

// Clock returns the current time
type Clock func() time.Time

// ProductCache memoizes the full product list for a fixed TTL
type ProductCache struct {
	mu        sync.RWMutex
	products  []domain.Product
	fetchedAt time.Time
	ttl       time.Duration
	now       Clock
}

// NewProductCache creates a cache. A nil clock uses time.Now.
func NewProductCache(ttl time.Duration, now Clock) *ProductCache {
	if now == nil {
		now = time.Now
	}
	return &ProductCache{ttl: ttl, now: now}
}

// Get returns the cached products while they are fresh
func (c *ProductCache) Get() ([]domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.products == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return slices.Clone(c.products), true
}

// Set replaces the cached products and restarts the TTL
func (c *ProductCache) Set(products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = slices.Clone(products)
	c.fetchedAt = c.now()
}

// Invalidate drops the cached products
func (c *ProductCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = nil
	c.fetchedAt = time.Time{}
}
