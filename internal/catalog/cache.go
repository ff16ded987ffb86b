package catalog

import (
	"context"
	"errors"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache holds one snapshot of the full catalog. A snapshot is only ever a
// display copy; the backend keeps the authoritative stock counts.
type Cache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product) error
	Delete(ctx context.Context) error
}
