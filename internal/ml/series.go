// Package ml contains the model collaborators that consume the engine's
// output or the raw ledger: revenue forecasting, RFM clustering and
// daily anomaly detection. The models are deliberately simple; their
// value is the stable input/output contract, not estimation quality.
package ml

import (
	"sort"
	"time"

	"retailbi/pkg/contracts/domain"
)

// DailyPoint is one day of the ledger aggregated.
type DailyPoint struct {
	Date         time.Time
	Revenue      float64
	Quantity     int64
	SaleCount    int64
	MeanDiscount float64
}

// DailySeries reduces the ledger into per-day aggregates, sorted by
// date ascending. Days with no sales are absent.
func DailySeries(records []domain.SaleRecord) []DailyPoint {
	type accum struct {
		revenue  float64
		quantity int64
		count    int64
		discount float64
	}

	byDay := make(map[time.Time]*accum)
	for _, r := range records {
		day := time.Date(r.SaleDate.Year(), r.SaleDate.Month(), r.SaleDate.Day(), 0, 0, 0, 0, time.UTC)
		a, ok := byDay[day]
		if !ok {
			a = &accum{}
			byDay[day] = a
		}
		a.revenue += r.NetRevenue
		a.quantity += r.Quantity
		a.count++
		a.discount += r.DiscountPct
	}

	points := make([]DailyPoint, 0, len(byDay))
	for day, a := range byDay {
		points = append(points, DailyPoint{
			Date:         day,
			Revenue:      a.revenue,
			Quantity:     a.quantity,
			SaleCount:    a.count,
			MeanDiscount: a.discount / float64(a.count),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// linearRegression fits y = slope*x + intercept over the pairs and
// returns the fit plus R².
func linearRegression(x, y []float64) (slope, intercept, rSquared float64) {
	n := float64(len(x))
	if n == 0 {
		return 0, 0, 0
	}

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var numerator, denominator float64
	for i := range x {
		numerator += (x[i] - meanX) * (y[i] - meanY)
		denominator += (x[i] - meanX) * (x[i] - meanX)
	}

	if denominator != 0 {
		slope = numerator / denominator
	}
	intercept = meanY - slope*meanX

	var ssRes, ssTot float64
	for i := range x {
		predicted := slope*x[i] + intercept
		ssRes += (y[i] - predicted) * (y[i] - predicted)
		ssTot += (y[i] - meanY) * (y[i] - meanY)
	}
	if ssTot != 0 {
		rSquared = 1 - (ssRes / ssTot)
	}

	return slope, intercept, rSquared
}
