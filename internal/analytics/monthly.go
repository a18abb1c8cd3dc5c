package analytics

import (
	"sort"

	"retailbi/pkg/contracts/domain"
)

// AggregateMonthly reduces normalized sale records into one rollup per
// (year, month) present in the input. Each record contributes to exactly
// one aggregate, so summed revenue across all months equals the ledger
// total. Months with no sales simply do not appear.
//
// Output is sorted by (year, month) ascending for reproducible files;
// callers needing another order re-sort.
func AggregateMonthly(records []domain.SaleRecord) []domain.MonthlyAggregate {
	type monthKey struct {
		year  int
		month int
	}

	groups := make(map[monthKey]*domain.MonthlyAggregate)
	for _, rec := range records {
		key := monthKey{year: rec.Year, month: rec.Month}
		agg, ok := groups[key]
		if !ok {
			agg = &domain.MonthlyAggregate{Year: rec.Year, Month: rec.Month}
			groups[key] = agg
		}
		agg.NetRevenue += rec.NetRevenue
		agg.GrossProfit += rec.GrossProfit
		agg.Quantity += rec.Quantity
		agg.SaleCount++
	}

	out := make([]domain.MonthlyAggregate, 0, len(groups))
	for _, agg := range groups {
		// A group exists only because at least one record landed in it,
		// so the count is never zero here.
		agg.AvgTicket = round2(agg.NetRevenue / float64(agg.SaleCount))
		out = append(out, *agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})

	return out
}
