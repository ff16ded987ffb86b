package catalog

import (
	"context"
	"sync"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

// MemoryCache is the default process-local snapshot holder. An empty catalog
// is a valid cached value; only an unset cache reports a miss.
type MemoryCache struct {
	mu       sync.RWMutex
	products []domain.Product
	filled   bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) Get(context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.filled {
		return nil, ErrCacheMiss
	}
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *MemoryCache) Set(_ context.Context, products []domain.Product) error {
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = cp
	m.filled = true
	return nil
}

func (m *MemoryCache) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = nil
	m.filled = false
	return nil
}
