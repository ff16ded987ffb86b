package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

// HeaderIdempotencyKey guards order submission against double delivery. The
// key is generated client-side, once per submit attempt.
const HeaderIdempotencyKey = "Idempotency-Key"

// ListOrders fetches the global order set. ADMIN only.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return c.listOrders(ctx, "/api/orders")
}

// ListMyOrders fetches only the orders owned by the calling identity. The
// scoping is a server-side contract; the client performs no filtering of its
// own on the result.
func (c *Client) ListMyOrders(ctx context.Context) ([]domain.Order, error) {
	return c.listOrders(ctx, "/api/orders/my-orders")
}

func (c *Client) listOrders(ctx context.Context, path string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &orders, nil); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &o, nil)
	return o, err
}

// OrderStats returns the global revenue aggregates. ADMIN only.
func (c *Client) OrderStats(ctx context.Context) (domain.OrderStats, error) {
	var s domain.OrderStats
	err := c.do(ctx, http.MethodGet, "/api/orders/stats", nil, &s, nil)
	return s, err
}

// MyOrderStats returns the calling customer's personal aggregates.
func (c *Client) MyOrderStats(ctx context.Context) (domain.CustomerStats, error) {
	var s domain.CustomerStats
	err := c.do(ctx, http.MethodGet, "/api/orders/my-stats", nil, &s, nil)
	return s, err
}

// SubmitOrder posts the cart projection. The backend validates and decrements
// stock atomically: on any rejection it has performed no partial mutation.
func (c *Client) SubmitOrder(ctx context.Context, items []domain.OrderRequestItem, idempotencyKey string) (domain.Order, error) {
	hdr := http.Header{}
	if idempotencyKey != "" {
		hdr.Set(HeaderIdempotencyKey, idempotencyKey)
	}
	var o domain.Order
	err := c.do(ctx, http.MethodPost, "/api/orders", items, &o, hdr)
	return o, err
}

// CancelOrder requests the CREATED -> CANCELED transition. The caller
// refetches afterwards; the local view is never patched.
func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/orders/%d/cancel", id), nil, nil, nil)
}
