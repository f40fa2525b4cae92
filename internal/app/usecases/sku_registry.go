package usecases

import (
	"sync"

	"maya-shopify-sync/internal/domain/model"
)

// skuRegistry serializes work per SKU within one run and remembers the product each SKU resolved to.
// Shopify's variant search index lags behind writes, so a repeated SKU must not rely on FindBySku.
type skuRegistry struct {
	mu      sync.Mutex
	entries map[string]*skuEntry
}

type skuEntry struct {
	mu     sync.Mutex
	handle *model.ProductHandle
}

func newSkuRegistry() *skuRegistry {
	return &skuRegistry{entries: make(map[string]*skuEntry)}
}

// acquire locks the SKU's entry. The caller must call unlock.
func (r *skuRegistry) acquire(sku string) *skuEntry {
	r.mu.Lock()
	entry, ok := r.entries[sku]
	if !ok {
		entry = &skuEntry{}
		r.entries[sku] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	return entry
}

func (e *skuEntry) remember(handle model.ProductHandle) {
	e.handle = &handle
}

func (e *skuEntry) known() *model.ProductHandle {
	if e.handle == nil {
		return nil
	}
	handle := *e.handle
	return &handle
}

func (e *skuEntry) unlock() {
	e.mu.Unlock()
}
