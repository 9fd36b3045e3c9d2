package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a pending selection. UnitPrice is advisory (the price shown
// when the item was added); the authoritative price snapshot happens at
// checkout.
type CartItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Cart holds one user's selections as a single JSONB document keyed by
// product id. Mutation is read-modify-write on the row, last write wins.
type Cart struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"user_id"`
	Items     map[string]CartItem `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}
