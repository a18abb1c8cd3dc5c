package analytics

import (
	"fmt"
	"sort"
	"time"

	"retailbi/pkg/contracts/domain"
)

// segmentRule pairs a predicate over (R score, F score) with the label it
// assigns. Rules are evaluated in slice order and the first match wins, so
// precedence lives in the data rather than in nested conditionals.
type segmentRule struct {
	Label string
	R     []int
	F     []int
}

func (r segmentRule) matches(rScore, fScore int) bool {
	return containsInt(r.R, rScore) && containsInt(r.F, fScore)
}

// segmentRules is the ordered rule chain for customer segmentation. The
// chain is deliberately not exhaustive by symmetric design: combinations
// the first four rules miss (e.g. R=1 with F=5) fall through to Lost. That
// asymmetry is part of the published artifact contract and is kept as-is.
var segmentRules = []segmentRule{
	{Label: domain.SegmentChampions, R: []int{4, 5}, F: []int{4, 5}},
	{Label: domain.SegmentLoyal, R: []int{3, 4, 5}, F: []int{3, 4}},
	{Label: domain.SegmentPotential, R: []int{4, 5}, F: []int{1, 2}},
	{Label: domain.SegmentAtRisk, R: []int{2, 3}, F: []int{2, 3, 4}},
}

// assignSegment walks the rule chain and returns the first matching label,
// falling back to Lost.
func assignSegment(rScore, fScore int) string {
	for _, rule := range segmentRules {
		if rule.matches(rScore, fScore) {
			return rule.Label
		}
	}
	return domain.SegmentLost
}

// ScoreRFM reduces sale records into one recency/frequency/monetary row per
// customer, quantile-scores each metric into at most five bins and assigns
// a segment label through the ordered rule chain.
//
// Recency is measured in whole days between each customer's latest sale and
// the asOf instant, which callers pass explicitly so the computation stays
// deterministic for a fixed dataset.
//
// When a metric's quantile boundaries coincide the bins collapse to the
// distinct boundary set; every customer still receives a score but the
// achievable range narrows. Each collapse is reported as a
// DegenerateQuantileWarning alongside the result.
//
// With zero customers the reduction fails with *EmptyDatasetError.
func ScoreRFM(records []domain.SaleRecord, asOf time.Time) ([]domain.CustomerRFM, []DegenerateQuantileWarning, error) {
	type customerAccum struct {
		lastSale  time.Time
		frequency int64
		monetary  float64
	}

	accum := make(map[string]*customerAccum)
	for _, rec := range records {
		c, ok := accum[rec.CustomerID]
		if !ok {
			c = &customerAccum{}
			accum[rec.CustomerID] = c
		}
		if rec.SaleDate.After(c.lastSale) {
			c.lastSale = rec.SaleDate
		}
		c.frequency++
		c.monetary += rec.NetRevenue
	}

	if len(accum) == 0 {
		return nil, nil, &EmptyDatasetError{Artifact: "customer_rfm"}
	}

	out := make([]domain.CustomerRFM, 0, len(accum))
	for id, c := range accum {
		out = append(out, domain.CustomerRFM{
			CustomerID: id,
			Recency:    int(asOf.Sub(c.lastSale).Hours() / 24),
			Frequency:  c.frequency,
			Monetary:   c.monetary,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CustomerID < out[j].CustomerID
	})

	recency := make([]float64, len(out))
	frequency := make([]float64, len(out))
	monetary := make([]float64, len(out))
	for i, row := range out {
		recency[i] = float64(row.Recency)
		frequency[i] = float64(row.Frequency)
		monetary[i] = float64(row.Monetary)
	}

	var warnings []DegenerateQuantileWarning

	bounds := func(metric string, values []float64) []float64 {
		boundaries := quantileBoundaries(values, scoreBins)
		if got := len(boundaries) + 1; got < scoreBins {
			warnings = append(warnings, DegenerateQuantileWarning{
				Metric:    metric,
				Requested: scoreBins,
				Got:       got,
			})
		}
		return boundaries
	}

	recencyBounds := bounds("recency", recency)
	frequencyBounds := bounds("frequency", frequency)
	monetaryBounds := bounds("monetary", monetary)

	for i := range out {
		out[i].RScore = invertedScore(binIndex(recency[i], recencyBounds))
		out[i].FScore = directScore(binIndex(frequency[i], frequencyBounds))
		out[i].MScore = directScore(binIndex(monetary[i], monetaryBounds))
		out[i].RFMScore = fmt.Sprintf("%d%d%d", out[i].RScore, out[i].FScore, out[i].MScore)
		out[i].Segment = assignSegment(out[i].RScore, out[i].FScore)
	}

	return out, warnings, nil
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
