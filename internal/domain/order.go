package domain

import "time"

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// Terminal reports whether no further status transition is possible.
// Transitions are backend-enforced; the client only requests them.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCanceled || s == OrderStatusCompleted
}

type ProductItem struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Order is a backend-owned record, fetched read-only. Status is never mutated
// locally; after a requested transition the list is refetched.
type Order struct {
	ID           int64         `json:"id"`
	CustomerID   string        `json:"customerId"`
	CreatedAt    time.Time     `json:"createdAt"`
	Status       OrderStatus   `json:"status"`
	TotalAmount  float64       `json:"totalAmount"`
	ProductItems []ProductItem `json:"productItems"`
}

// OrderRequestItem is one line of the write-only projection sent to
// POST /api/orders.
type OrderRequestItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}
