package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// ParseOrderStatus accepts the four known statuses, case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, status := range OrderStatuses {
		if candidate == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanCancel reports whether an order in this status may still be cancelled.
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

type Order struct {
	ID           int64           `json:"id"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Items        []OrderItem     `json:"items"`
	Status       OrderStatus     `json:"status"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OrderItem captures the product name and price at the time the order was placed.
type OrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// NewOrder starts a PENDING order with no items.
func NewOrder(customerID, customerName string) *Order {
	return &Order{
		CustomerID:   customerID,
		CustomerName: customerName,
		Status:       OrderStatusPending,
		Subtotal:     decimal.Zero,
		Discount:     decimal.Zero,
		Total:        decimal.Zero,
	}
}

// AddItem appends a line for product, snapshotting its current name and price.
func (o *Order) AddItem(product Product, quantity int) {
	o.Items = append(o.Items, OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		Subtotal:    product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	})
	o.recalculate()
}

// ApplyDiscount sets the discount, clamped to [0, Subtotal].
func (o *Order) ApplyDiscount(amount decimal.Decimal) {
	o.Discount = amount
	o.recalculate()
}

func (o *Order) recalculate() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	o.Subtotal = subtotal

	if o.Discount.IsNegative() {
		o.Discount = decimal.Zero
	}
	if o.Discount.GreaterThan(subtotal) {
		o.Discount = subtotal
	}
	o.Total = subtotal.Sub(o.Discount)
}

// Clone returns a deep copy.
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}

type CreateOrderRequest struct {
	CustomerID   string                   `json:"customer_id"`
	CustomerName string                   `json:"customer_name"`
	Items        []CreateOrderItemRequest `json:"items"`
	Discount     *DiscountSelector        `json:"discount,omitempty"`
}

type CreateOrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// DiscountSelector is the wire shape of a discount choice. Percent is a
// pointer so an explicit 0 can be told apart from an omitted value.
type DiscountSelector struct {
	Type     string           `json:"type"`
	Percent  *decimal.Decimal `json:"percent,omitempty"`
	Amount   decimal.Decimal  `json:"amount"`
	Code     string           `json:"code"`
	MinOrder decimal.Decimal  `json:"min_order"`
}

// PercentOr returns Percent, or def when it was not given.
func (s DiscountSelector) PercentOr(def decimal.Decimal) decimal.Decimal {
	if s.Percent == nil {
		return def
	}
	return *s.Percent
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderDetails is an order plus the description of the active discount policy.
type OrderDetails struct {
	Order          Order  `json:"order"`
	DiscountPolicy string `json:"discount_policy"`
}

type OrderStats struct {
	Total            int                 `json:"total"`
	ByStatus         map[OrderStatus]int `json:"by_status"`
	CompletedRevenue decimal.Decimal     `json:"completed_revenue"`
}
