package analytics

import (
	"sort"

	"retailbi/pkg/contracts/domain"
)

// ABC classification thresholds on cumulative revenue share.
const (
	classAThresholdPct = 80.0
	classBThresholdPct = 95.0
)

// ClassifyABC reduces sale records into one revenue row per product, ranks
// by revenue descending (ties broken by product id ascending so the ranking
// is reproducible), accumulates the running revenue share and assigns the
// class letter: A while the share stays at or below 80%, B at or below 95%,
// C beyond. The final row's cumulative share is 100% up to floating point
// error.
//
// With no transactions or zero total revenue there is nothing to rank
// against and the reduction fails with *EmptyDatasetError.
func ClassifyABC(records []domain.SaleRecord) ([]domain.ProductABC, error) {
	if len(records) == 0 {
		return nil, &EmptyDatasetError{Artifact: "product_abc"}
	}

	groups := make(map[string]*domain.ProductABC)
	total := 0.0
	for _, rec := range records {
		p, ok := groups[rec.ProductID]
		if !ok {
			p = &domain.ProductABC{ProductID: rec.ProductID}
			groups[rec.ProductID] = p
		}
		p.Revenue += rec.NetRevenue
		p.Quantity += rec.Quantity
		total += rec.NetRevenue
	}

	if total == 0 {
		return nil, &EmptyDatasetError{Artifact: "product_abc"}
	}

	out := make([]domain.ProductABC, 0, len(groups))
	for _, p := range groups {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProductID < out[j].ProductID
	})

	running := 0.0
	for i := range out {
		running += out[i].Revenue
		out[i].CumulativeRevenue = running
		out[i].CumulativePct = round2(running / total * 100)
		out[i].Class = classify(out[i].CumulativePct)
	}

	return out, nil
}

func classify(cumulativePct float64) string {
	switch {
	case cumulativePct <= classAThresholdPct:
		return domain.ClassA
	case cumulativePct <= classBThresholdPct:
		return domain.ClassB
	default:
		return domain.ClassC
	}
}
