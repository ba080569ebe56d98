package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/flightdelay/internal/model"
)

// Cache memoizes the dataset produced by a Loader. It satisfies the source
// interface the dashboard manager expects.
type Cache struct {
	loader Loader

	mu       sync.Mutex
	ds       *model.Dataset
	loadedAt time.Time
}

// NewCache wraps l. Nothing is loaded until the first Get.
func NewCache(l Loader) *Cache {
	return &Cache{loader: l}
}

// Get returns the cached dataset, loading it on first use. A failed load is
// not cached.
func (c *Cache) Get(ctx context.Context) (*model.Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ds != nil {
		return c.ds, nil
	}
	return c.loadLocked(ctx)
}

// Reload loads a fresh dataset. The previous one stays cached if the load
// fails.
func (c *Cache) Reload(ctx context.Context) (*model.Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// LoadedAt reports when the cached dataset was loaded, zero if never.
func (c *Cache) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedAt
}

func (c *Cache) loadLocked(ctx context.Context) (*model.Dataset, error) {
	ds, err := c.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.ds, c.loadedAt = ds, time.Now()
	return ds, nil
}
