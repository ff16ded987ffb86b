package domain

// Product is a catalog entry owned by the backend. The client only ever holds
// a cached snapshot; StockQuantity is whatever the last fetch returned and the
// authoritative count lives server-side.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
}

func (p Product) InStock() bool {
	return p.StockQuantity > 0
}
