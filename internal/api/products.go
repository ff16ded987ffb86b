package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

// ListProducts fetches the full catalog. No pagination on this endpoint.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products, nil); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &p, nil)
	return p, err
}

// ProductStats returns the global catalog aggregates. ADMIN only; other
// callers get ErrForbidden from the backend.
func (c *Client) ProductStats(ctx context.Context) (domain.ProductStats, error) {
	var s domain.ProductStats
	err := c.do(ctx, http.MethodGet, "/api/products/stats", nil, &s, nil)
	return s, err
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var created domain.Product
	err := c.do(ctx, http.MethodPost, "/api/products", p, &created, nil)
	return created, err
}

func (c *Client) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var updated domain.Product
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID), p, &updated, nil)
	return updated, err
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, nil, nil)
}
