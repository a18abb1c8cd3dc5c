package domain

// MonthlyAggregate is one row of the monthly sales rollup artifact,
// keyed by calendar (year, month). Months with no sales are absent.
type MonthlyAggregate struct {
	Year        int     `json:"year" csv:"Year"`
	Month       int     `json:"month" csv:"Month"`
	NetRevenue  float64 `json:"net_revenue" csv:"NetRevenue"`
	GrossProfit float64 `json:"gross_profit" csv:"GrossProfit"`
	Quantity    int64   `json:"quantity" csv:"Quantity"`
	SaleCount   int64   `json:"sale_count" csv:"SaleCount"`
	AvgTicket   float64 `json:"avg_ticket" csv:"AvgTicket"`
}

// Segment labels assigned by the RFM rule chain. The set is closed: every
// customer with at least one purchase receives exactly one of these.
const (
	SegmentChampions = "Champions"
	SegmentLoyal     = "Loyal"
	SegmentPotential = "Potential"
	SegmentAtRisk    = "At Risk"
	SegmentLost      = "Lost"
)

// CustomerRFM is one row of the customer segmentation artifact.
// Recency is measured in whole days against the as-of instant supplied to
// the scorer, not against the wall clock.
type CustomerRFM struct {
	CustomerID string  `json:"customer_id" csv:"CustomerID"`
	Recency    int     `json:"recency" csv:"Recency"`
	Frequency  int64   `json:"frequency" csv:"Frequency"`
	Monetary   float64 `json:"monetary" csv:"Monetary"`
	RScore     int     `json:"r_score" csv:"RScore"`
	FScore     int     `json:"f_score" csv:"FScore"`
	MScore     int     `json:"m_score" csv:"MScore"`
	RFMScore   string  `json:"rfm_score" csv:"RFMScore"`
	Segment    string  `json:"segment" csv:"Segment"`
}

// ABC class letters by cumulative revenue share.
const (
	ClassA = "A"
	ClassB = "B"
	ClassC = "C"
)

// ProductABC is one row of the product revenue classification artifact,
// ordered by revenue descending with product id as the tie-break.
type ProductABC struct {
	ProductID         string  `json:"product_id" csv:"ProductID"`
	Revenue           float64 `json:"revenue" csv:"Revenue"`
	Quantity          int64   `json:"quantity" csv:"Quantity"`
	CumulativeRevenue float64 `json:"cumulative_revenue" csv:"CumulativeRevenue"`
	CumulativePct     float64 `json:"cumulative_pct" csv:"CumulativePct"`
	Class             string  `json:"class" csv:"Class"`
}
