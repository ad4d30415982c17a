package transform

import (
	"github.com/shopspring/decimal"

	"github.com/soeborg/bikestore-etl/internal/db"
)

var one = decimal.NewFromInt(1)

// BuildOrderSummary derives one reporting row per order: the discounted
// line-item total and the customer's display name.
//
// Orders without line items total zero, never null. Orders whose
// customer_id is absent from the customer table keep a null name.
func BuildOrderSummary(t *Tables) []db.OrderSummary {
	totals := make(map[int]decimal.Decimal, len(t.Orders))
	for _, it := range t.OrderItems {
		// line_total = quantity × list_price × (1 − discount)
		line := decimal.NewFromInt(int64(it.Quantity)).
			Mul(it.ListPrice).
			Mul(one.Sub(it.Discount))
		totals[it.OrderID] = totals[it.OrderID].Add(line)
	}

	names := make(map[int]string, len(t.Customers))
	for _, c := range t.Customers {
		names[c.CustomerID] = c.FirstName + " " + c.LastName
	}

	out := make([]db.OrderSummary, 0, len(t.Orders))
	for _, o := range t.Orders {
		row := db.OrderSummary{
			OrderID:    o.OrderID,
			OrderDate:  o.OrderDate,
			CustomerID: o.CustomerID,
			OrderTotal: totals[o.OrderID], // decimal zero value when no items
		}
		if name, ok := names[o.CustomerID]; ok {
			row.CustomerName = &name
		}
		out = append(out, row)
	}
	return out
}
