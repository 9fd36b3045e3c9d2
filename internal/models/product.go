package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               int64           `json:"id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Presentation     string          `json:"presentation,omitempty"`
	ActiveIngredient string          `json:"active_ingredient,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Category         string          `json:"category,omitempty"`
	ImageURL         string          `json:"image_url,omitempty"`
	Stock            int             `json:"stock"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
}

type CreateProductRequest struct {
	SKU              string          `json:"sku" validate:"required,min=3,max=50"`
	Name             string          `json:"name" validate:"required,min=3,max=200"`
	Description      string          `json:"description,omitempty"`
	Presentation     string          `json:"presentation,omitempty"`
	ActiveIngredient string          `json:"active_ingredient,omitempty"`
	Price            decimal.Decimal `json:"price" validate:"required"`
	Category         string          `json:"category,omitempty"`
	ImageURL         string          `json:"image_url,omitempty"`
	Stock            int             `json:"stock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	SKU              *string          `json:"sku,omitempty" validate:"omitempty,min=3,max=50"`
	Name             *string          `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description      *string          `json:"description,omitempty"`
	Presentation     *string          `json:"presentation,omitempty"`
	ActiveIngredient *string          `json:"active_ingredient,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Category         *string          `json:"category,omitempty"`
	ImageURL         *string          `json:"image_url,omitempty"`
	Stock            *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Active           *bool            `json:"active,omitempty"`
}

type AdjustStockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type StockAvailability struct {
	ProductID int64 `json:"product_id"`
	Requested int   `json:"requested"`
	Available bool  `json:"available"`
}

type PaginatedResponse struct {
	Data     any `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
