package analytics

import (
	"math"
	"time"

	"retailbi/pkg/contracts/domain"
)

// Normalize derives the calendar and margin fields for every sale record.
// The input slice is never mutated: each record is copied and the copy is
// augmented with Year, Month, Weekday (0=Monday) and MarginPct rounded to
// two decimals.
//
// A record with zero net revenue gets MarginPct = NaN rather than a
// divide-by-zero fault or a silent zero; callers that export or serve the
// value decide how to render the undefined margin.
//
// A record with a missing sale date fails with *MalformedRecordError and no
// output is produced. Records are validated here, once, so the reduction
// stages never see malformed data.
func Normalize(records []domain.SaleRecord) ([]domain.SaleRecord, error) {
	out := make([]domain.SaleRecord, len(records))

	for i, rec := range records {
		if rec.SaleDate.IsZero() {
			return nil, &MalformedRecordError{
				TransactionID: rec.TransactionID,
				Field:         "sale_date",
			}
		}

		norm := rec
		norm.Year = rec.SaleDate.Year()
		norm.Month = int(rec.SaleDate.Month())
		norm.Weekday = mondayIndexed(rec.SaleDate)

		if rec.NetRevenue == 0 {
			norm.MarginPct = math.NaN()
		} else {
			norm.MarginPct = round2(rec.GrossProfit / rec.NetRevenue * 100)
		}

		out[i] = norm
	}

	return out, nil
}

// mondayIndexed converts time.Weekday (Sunday=0) to the Monday=0 convention
// used by the artifact consumers.
func mondayIndexed(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
