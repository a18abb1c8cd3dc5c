package ml

import (
	"math"
	"time"

	"retailbi/pkg/contracts/domain"
)

// defaultSigmaThreshold marks a day anomalous when a metric sits more
// than this many standard deviations from its mean.
const defaultSigmaThreshold = 3.0

// Anomaly is one (day, metric) pair flagged as unusual.
type Anomaly struct {
	Date     time.Time
	Metric   string
	Value    float64
	Expected float64
	ZScore   float64
}

// AnomalyDetector flags unusual days in the ledger by z-scoring daily
// aggregates of revenue, quantity, sale count and mean discount.
type AnomalyDetector struct {
	SigmaThreshold float64
}

// NewAnomalyDetector creates a detector with the default threshold.
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{SigmaThreshold: defaultSigmaThreshold}
}

// Detect returns all anomalous (day, metric) pairs, grouped by metric
// and ordered by date within each metric. A metric with zero variance
// produces no anomalies.
func (d *AnomalyDetector) Detect(records []domain.SaleRecord) []Anomaly {
	series := DailySeries(records)
	if len(series) == 0 {
		return nil
	}

	metrics := []struct {
		name  string
		value func(DailyPoint) float64
	}{
		{"revenue", func(p DailyPoint) float64 { return p.Revenue }},
		{"quantity", func(p DailyPoint) float64 { return float64(p.Quantity) }},
		{"sale_count", func(p DailyPoint) float64 { return float64(p.SaleCount) }},
		{"mean_discount", func(p DailyPoint) float64 { return p.MeanDiscount }},
	}

	var anomalies []Anomaly
	for _, m := range metrics {
		mean, std := momentsOf(series, m.value)
		if std == 0 {
			continue
		}
		for _, p := range series {
			v := m.value(p)
			z := (v - mean) / std
			if math.Abs(z) > d.SigmaThreshold {
				anomalies = append(anomalies, Anomaly{
					Date:     p.Date,
					Metric:   m.name,
					Value:    v,
					Expected: mean,
					ZScore:   z,
				})
			}
		}
	}
	return anomalies
}

func momentsOf(series []DailyPoint, value func(DailyPoint) float64) (mean, std float64) {
	n := float64(len(series))
	var sum, sumSq float64
	for _, p := range series {
		v := value(p)
		sum += v
		sumSq += v * v
	}
	mean = sum / n
	variance := (sumSq / n) - (mean * mean)
	if variance > 0 {
		std = math.Sqrt(variance)
	}
	return mean, std
}
