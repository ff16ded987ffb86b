package domain

// ProductStats is the ADMIN-only aggregate from GET /api/products/stats.
type ProductStats struct {
	LowStock int `json:"lowStock"`
}

// OrderStats is the ADMIN-only aggregate from GET /api/orders/stats.
type OrderStats struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalOrders  int64   `json:"totalOrders"`
}

// AdminStats joins the two global aggregates for the dashboard.
type AdminStats struct {
	Products ProductStats `json:"products"`
	Orders   OrderStats   `json:"orders"`
}

// CustomerStats is the per-caller aggregate from GET /api/orders/my-stats.
// It is a distinct read shape, not a filtered AdminStats.
type CustomerStats struct {
	Spent  float64 `json:"spent"`
	Count  int64   `json:"count"`
	Active int64   `json:"active"`
}
