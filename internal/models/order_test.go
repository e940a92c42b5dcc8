package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_TotalsFollowItemsAndDiscount(t *testing.T) {
	order := NewOrder("c-1", "Ada")
	order.AddItem(Product{ID: 1, Name: "Keyboard", Price: decimal.RequireFromString("49.99")}, 2)
	order.AddItem(Product{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("20")}, 1)

	assert.Equal(t, "119.98", order.Subtotal.String())
	assert.Equal(t, "119.98", order.Total.String())

	order.ApplyDiscount(decimal.RequireFromString("19.98"))
	assert.Equal(t, "100", order.Total.String())
	assert.Equal(t, "99.98", order.Items[0].Subtotal.String())
	assert.Equal(t, "Keyboard", order.Items[0].ProductName)
}

func TestOrder_DiscountIsClamped(t *testing.T) {
	order := NewOrder("c-1", "Ada")
	order.AddItem(Product{ID: 1, Name: "Cable", Price: decimal.NewFromInt(5)}, 2)

	order.ApplyDiscount(decimal.NewFromInt(50))
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(10)))
	assert.True(t, order.Total.IsZero())

	order.ApplyDiscount(decimal.NewFromInt(-3))
	assert.True(t, order.Discount.IsZero())
	assert.True(t, order.Total.Equal(decimal.NewFromInt(10)))
}

func TestOrder_CloneDoesNotShareItems(t *testing.T) {
	order := NewOrder("c-1", "Ada")
	order.AddItem(Product{ID: 1, Name: "Cable", Price: decimal.NewFromInt(5)}, 1)

	clone := order.Clone()
	clone.Items[0].Quantity = 99

	assert.Equal(t, 1, order.Items[0].Quantity)
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("processing")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusProcessing, status)

	_, err = ParseOrderStatus("SHIPPED")
	assert.Error(t, err)

	assert.True(t, OrderStatusPending.CanCancel())
	assert.True(t, OrderStatusProcessing.CanCancel())
	assert.False(t, OrderStatusCompleted.CanCancel())
	assert.False(t, OrderStatusCancelled.CanCancel())
}
