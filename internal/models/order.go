package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// statusAliases maps legacy tokens still sent by older clients onto the
// canonical status names.
var statusAliases = map[string]OrderStatus{
	"IN_PROCESS": OrderStatusProcessing,
}

// ParseOrderStatus matches a free-form token against the known statuses.
// Matching is case-insensitive and whitespace-tolerant.
func ParseOrderStatus(token string) (OrderStatus, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(token))

	if status, ok := statusAliases[normalized]; ok {
		return status, true
	}

	switch OrderStatus(normalized) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(normalized), true
	}

	return "", false
}

// DisplayStatus is the externally reported status. SHIPPED and DELIVERED are
// collapsed for older clients; the internal states stay distinct.
func (s OrderStatus) DisplayStatus() OrderStatus {
	if s == OrderStatusShipped {
		return OrderStatusDelivered
	}

	return s
}

// Address is a shipping snapshot copied at order creation time. Later edits
// to the user's address book never alter past orders.
type Address struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Line      string    `json:"line"`
	District  string    `json:"district,omitempty"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderItem freezes quantity, unit price and line subtotal at order creation.
// The product reference is for display only.
type OrderItem struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"order_id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	ProductCategory string          `json:"product_category,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          int64           `json:"user_id"`
	CourierID       *int64          `json:"courier_id,omitempty"`
	Status          OrderStatus     `json:"status"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CheckoutRequest carries the shipping fields collected at checkout. All are
// optional free text; an order without any of them gets no address snapshot.
type CheckoutRequest struct {
	ShippingAddress   string `json:"shipping_address,omitempty"`
	ShippingDistrict  string `json:"shipping_district,omitempty"`
	ShippingReference string `json:"shipping_reference,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AssignCourierRequest struct {
	CourierID int64 `json:"courier_id" validate:"required"`
}

// DeliveryStats is derived on read. TodaysEarnings sums DELIVERED orders
// whose creation date is the current calendar date.
type DeliveryStats struct {
	Pending        int             `json:"pending"`
	InProcess      int             `json:"in_process"`
	Delivered      int             `json:"delivered"`
	TodaysEarnings decimal.Decimal `json:"todays_earnings"`
}
