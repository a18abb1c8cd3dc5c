package domain

// Product represents a row of the product dimension table. The dimension is
// consumed by the query layer (top-products join, category listing) and by
// the synthetic generator; the transformation engine itself only sees
// product ids on sale records.
type Product struct {
	ProductID string  `json:"product_id" csv:"ProductID" validate:"required"`
	Name      string  `json:"name" csv:"Name" validate:"required"`
	Category  string  `json:"category" csv:"Category"`
	UnitCost  float64 `json:"unit_cost,omitempty" csv:"UnitCost"`
	UnitPrice float64 `json:"unit_price,omitempty" csv:"UnitPrice"`
}
