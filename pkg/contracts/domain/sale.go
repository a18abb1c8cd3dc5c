package domain

import (
	"math"
	"time"
)

// SaleRecord represents a single transaction in the retail sales ledger.
// Records are immutable once extracted; derived calendar and margin fields
// are populated by the analytics normalizer on a copy, never in place.
type SaleRecord struct {
	TransactionID string    `json:"transaction_id" csv:"TransactionID" validate:"required"`
	CustomerID    string    `json:"customer_id" csv:"CustomerID" validate:"required"`
	ProductID     string    `json:"product_id" csv:"ProductID" validate:"required"`
	SaleDate      time.Time `json:"sale_date" csv:"SaleDate"`
	Quantity      int64     `json:"quantity" csv:"Quantity" validate:"min=1"`
	NetRevenue    float64   `json:"net_revenue" csv:"NetRevenue"`
	GrossProfit   float64   `json:"gross_profit" csv:"GrossProfit"`
	DiscountPct   float64   `json:"discount_pct" csv:"DiscountPct"`

	// Derived fields, populated by analytics.Normalize.
	Year      int     `json:"year,omitempty" csv:"Year"`
	Month     int     `json:"month,omitempty" csv:"Month"`
	Weekday   int     `json:"weekday,omitempty" csv:"Weekday"`
	MarginPct float64 `json:"margin_pct,omitempty" csv:"MarginPct"`
}

// HasMargin reports whether the margin percentage is defined for this
// record. Records with zero net revenue carry NaN rather than a fabricated
// zero margin.
func (s SaleRecord) HasMargin() bool {
	return !math.IsNaN(s.MarginPct)
}

// Normalized reports whether derived calendar fields have been populated.
func (s SaleRecord) Normalized() bool {
	return s.Year != 0
}
