// Package cache implementa ValuationCache: sin cache, en proceso y Redis.
package cache

import (
	"context"
	"sync"
	"time"

	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
)

var (
	_ appinventory.ValuationCache = NoopValuationCache{}
	_ appinventory.ValuationCache = (*LocalValuationCache)(nil)
)

// NoopValuationCache nunca guarda nada; la generación siempre es 0.
type NoopValuationCache struct{}

func (NoopValuationCache) Get(_ context.Context, _ string) ([]inventory.ProductValuation, bool, error) {
	return nil, false, nil
}

func (NoopValuationCache) Set(_ context.Context, _ string, _ []inventory.ProductValuation, _ time.Duration) error {
	return nil
}

func (NoopValuationCache) Generation(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

func (NoopValuationCache) Bump(_ context.Context, _ string) error {
	return nil
}

type localEntry struct {
	value     []inventory.ProductValuation
	expiresAt time.Time
}

// LocalValuationCache cache en proceso para una sola instancia (backend memory).
// Las entradas de generaciones viejas quedan huérfanas hasta que expiran.
type LocalValuationCache struct {
	mu          sync.Mutex
	entries     map[string]localEntry
	generations map[string]int64
	now         func() time.Time
}

func NewLocalValuationCache() *LocalValuationCache {
	return &LocalValuationCache{
		entries:     make(map[string]localEntry),
		generations: make(map[string]int64),
		now:         time.Now,
	}
}

func (c *LocalValuationCache) Get(_ context.Context, key string) ([]inventory.ProductValuation, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return cloneValuation(e.value), true, nil
}

func (c *LocalValuationCache) Set(_ context.Context, key string, value []inventory.ProductValuation, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictExpired()
	c.entries[key] = localEntry{
		value:     cloneValuation(value),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *LocalValuationCache) Generation(_ context.Context, companyID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[companyID], nil
}

func (c *LocalValuationCache) Bump(_ context.Context, companyID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[companyID]++
	return nil
}

// evictExpired requiere c.mu tomado.
func (c *LocalValuationCache) evictExpired() {
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

func cloneValuation(in []inventory.ProductValuation) []inventory.ProductValuation {
	out := make([]inventory.ProductValuation, len(in))
	copy(out, in)
	return out
}
