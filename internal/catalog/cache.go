// Package catalog holds the product catalog the cart engine prices against.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Cache is the engine's single copy of the last fetched catalog. A fetch or a
// search replaces it wholesale; it is never patched in place.
type Cache struct {
	mu       sync.RWMutex
	products []domain.Product
	loaded   bool

	store  Store
	logger *slog.Logger
}

// NewCache creates an empty cache. store may be nil.
func NewCache(store Store, logger *slog.Logger) *Cache {
	return &Cache{
		products: []domain.Product{},
		store:    store,
		logger:   logger,
	}
}

// Replace swaps in products and writes them through to the snapshot store.
// A store failure is logged and does not undo the swap.
func (c *Cache) Replace(ctx context.Context, products []domain.Product) {
	snap := clone(products)

	c.mu.Lock()
	c.products = snap
	c.loaded = true
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, snap); err != nil {
		c.logger.WarnContext(ctx, "failed to save catalog snapshot",
			slog.Int("products", len(snap)),
			slog.String("error", err.Error()),
		)
	}
}

// Warm fills an empty cache from the snapshot store. It reports whether a
// snapshot was loaded; a missing snapshot is not an error.
func (c *Cache) Warm(ctx context.Context) (bool, error) {
	if c.store == nil {
		return false, nil
	}

	products, err := c.store.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return false, nil
	}
	c.products = products
	c.loaded = true

	c.logger.DebugContext(ctx, "catalog warmed from snapshot", slog.Int("products", len(products)))
	return true, nil
}

// Products returns a copy of the current catalog.
func (c *Cache) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.products)
}

// Lookup returns the product with the given id.
func (c *Cache) Lookup(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if p := domain.FindProduct(c.products, id); p != nil {
		return *p, true
	}
	return domain.Product{}, false
}

// Len returns the number of products held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// Loaded reports whether the cache has been filled at least once.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
