// Package catalog is the read-through cache of product records. It is the
// source of truth for display and for the cart's advisory stock checks;
// Refresh is the only path by which stale stock numbers are corrected.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

// Lister is the backend read this store depends on.
type Lister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type Store struct {
	backend Lister
	cache   Cache
	log     *slog.Logger
	sfg     singleflight.Group // collapses concurrent misses into one fetch
}

func NewStore(backend Lister, cache Cache, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{backend: backend, cache: cache, log: log}
}

// List returns the cached catalog, fetching from the backend on a miss. A
// fetch failure yields an empty sequence and the error: "no products" and
// "fetch failed" are distinct outcomes and callers must not crash on either.
func (s *Store) List(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do(catalogKey, func() (any, error) {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("catalog cache read failed", "error", err)
		}

		products, err = s.backend.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, products); err != nil {
			s.log.Warn("catalog cache write failed", "error", err)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// Refresh discards the snapshot and refetches. Invoked after every successful
// order submission and after every catalog-mutating admin action, so the
// displayed stock reflects the backend's decrement.
func (s *Store) Refresh(ctx context.Context) ([]domain.Product, error) {
	if err := s.cache.Delete(ctx); err != nil {
		s.log.Warn("catalog cache invalidate failed", "error", err)
	}
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, products); err != nil {
		s.log.Warn("catalog cache write failed", "error", err)
	}
	return products, nil
}
