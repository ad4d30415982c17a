package transform

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soeborg/bikestore-etl/internal/db"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineTotalAppliesQuantityAndDiscount(t *testing.T) {
	tables := &Tables{
		Customers: []db.Customer{{CustomerID: 1, FirstName: "Jane", LastName: "Doe"}},
		Orders:    []db.Order{{OrderID: 1, CustomerID: 1}},
		OrderItems: []db.OrderItem{
			{OrderID: 1, ItemID: 1, Quantity: 2, ListPrice: dec("100.0"), Discount: dec("0.1")},
		},
	}

	summary := BuildOrderSummary(tables)
	require.Len(t, summary, 1)
	assert.True(t, summary[0].OrderTotal.Equal(dec("180")),
		"2 × 100.0 × (1 − 0.1) should be exactly 180, got %s", summary[0].OrderTotal)
}

func TestOrderWithoutItemsTotalsZero(t *testing.T) {
	tables := &Tables{
		Customers: []db.Customer{{CustomerID: 1, FirstName: "Jane", LastName: "Doe"}},
		Orders:    []db.Order{{OrderID: 7, CustomerID: 1}},
	}

	summary := BuildOrderSummary(tables)
	require.Len(t, summary, 1)
	assert.True(t, summary[0].OrderTotal.IsZero())
	require.NotNil(t, summary[0].CustomerName)
}

func TestCustomerDisplayName(t *testing.T) {
	tables := &Tables{
		Customers: []db.Customer{{CustomerID: 1, FirstName: "Jane", LastName: "Doe"}},
		Orders:    []db.Order{{OrderID: 1, CustomerID: 1}},
	}

	summary := BuildOrderSummary(tables)
	require.Len(t, summary, 1)
	require.NotNil(t, summary[0].CustomerName)
	assert.Equal(t, "Jane Doe", *summary[0].CustomerName)
}

func TestMissingCustomerYieldsNullName(t *testing.T) {
	tables := &Tables{
		Orders: []db.Order{{OrderID: 1, CustomerID: 99}},
		OrderItems: []db.OrderItem{
			{OrderID: 1, ItemID: 1, Quantity: 1, ListPrice: dec("10"), Discount: dec("0")},
		},
	}

	summary := BuildOrderSummary(tables)
	require.Len(t, summary, 1)
	assert.Nil(t, summary[0].CustomerName, "unknown customer keeps a null name")
	assert.True(t, summary[0].OrderTotal.Equal(dec("10")), "total is still computed")
}

func TestOneRowPerOrderInInputOrder(t *testing.T) {
	when := time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)
	tables := &Tables{
		Customers: []db.Customer{
			{CustomerID: 1, FirstName: "Jane", LastName: "Doe"},
			{CustomerID: 2, FirstName: "John", LastName: "Smith"},
		},
		Orders: []db.Order{
			{OrderID: 3, CustomerID: 2, OrderDate: &when},
			{OrderID: 1, CustomerID: 1},
			{OrderID: 2, CustomerID: 1},
		},
		OrderItems: []db.OrderItem{
			{OrderID: 3, ItemID: 1, Quantity: 1, ListPrice: dec("59.99"), Discount: dec("0")},
			{OrderID: 3, ItemID: 2, Quantity: 3, ListPrice: dec("20"), Discount: dec("0.5")},
		},
	}

	summary := BuildOrderSummary(tables)
	require.Len(t, summary, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{summary[0].OrderID, summary[1].OrderID, summary[2].OrderID})
	assert.Equal(t, &when, summary[0].OrderDate)
	assert.True(t, summary[0].OrderTotal.Equal(dec("89.99")), "59.99 + 30 = 89.99, got %s", summary[0].OrderTotal)
	assert.True(t, summary[1].OrderTotal.IsZero())
	assert.True(t, summary[2].OrderTotal.IsZero())
}
