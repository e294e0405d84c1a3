package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a read-only catalog entry
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      *string         `json:"image_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InStock reports whether at least qty units are available.
func (p Product) InStock(qty int) bool {
	return p.StockQuantity >= qty
}
