package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
)

func TestNew_RejectsEmptyAndNonPositiveLines(t *testing.T) {
	c := customer.Customer{ID: "C1"}

	_, err := New("o-1", c, nil)
	assert.ErrorIs(t, err, ErrNoLines)

	_, err = New("o-1", c, []Line{{ProductID: "P1", Quantity: 0, Price: decimal.NewFromInt(1)}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestOrder_TotalSumsLineSubtotals(t *testing.T) {
	o, err := New("o-1", customer.Customer{ID: "C1"}, []Line{
		{ProductID: "P1", Quantity: 3, Price: decimal.RequireFromString("10.00")},
		{ProductID: "P2", Quantity: 2, Price: decimal.RequireFromString("0.25")},
	})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("30.50").Equal(o.Total()), "got %s", o.Total())
	assert.False(t, o.CreatedAt.IsZero())
}

func TestOrder_CloneDoesNotShareLines(t *testing.T) {
	o, err := New("o-1", customer.Customer{ID: "C1"}, []Line{
		{ProductID: "P1", Quantity: 1, Price: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)

	clone := o.Clone()
	clone.Lines[0].Quantity = 99

	assert.Equal(t, 1, o.Lines[0].Quantity)
}

func TestNewAcceptedEvent(t *testing.T) {
	o, err := New("o-1", customer.Customer{ID: "C1"}, []Line{
		{ProductID: "P1", Quantity: 2, Price: decimal.NewFromInt(4)},
	})
	require.NoError(t, err)

	e := NewAcceptedEvent(o)

	assert.Equal(t, "order.accepted", e.EventName())
	assert.Equal(t, "o-1", e.OrderID)
	assert.Equal(t, "C1", e.CustomerID)
	assert.True(t, decimal.NewFromInt(8).Equal(e.Total))
	assert.Len(t, e.Lines, 1)
}
