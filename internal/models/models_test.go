package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderCanTransition(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPaid, OrderStatusDelivered, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusPaid, false},
		{OrderStatusDelivered, OrderStatusPaid, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusCancelled, OrderStatusDelivered, false},
	}

	for _, tc := range cases {
		order := &Order{Status: tc.from}
		assert.Equal(t, tc.want, order.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusPaid.Terminal())
	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
}

func TestProductAvailable(t *testing.T) {
	assert.True(t, (&Product{IsActive: true, StockQuantity: 1}).Available())
	assert.True(t, (&Product{IsActive: true, IsUnlimited: true}).Available())
	assert.False(t, (&Product{IsActive: true, StockQuantity: 0}).Available())
	assert.False(t, (&Product{IsActive: false, StockQuantity: 5}).Available())
}

func TestProductHasStock(t *testing.T) {
	limited := &Product{StockQuantity: 3}
	assert.True(t, limited.HasStock(3))
	assert.False(t, limited.HasStock(4))

	unlimited := &Product{IsUnlimited: true}
	assert.True(t, unlimited.HasStock(1000))
}

func TestValidProductType(t *testing.T) {
	assert.True(t, ValidProductType(ProductTypeAccount))
	assert.True(t, ValidProductType(ProductTypeKey))
	assert.True(t, ValidProductType(ProductTypePromo))
	assert.False(t, ValidProductType("subscription"))
	assert.False(t, ValidProductType(""))
}
