package exporter

import (
	"strconv"

	"retailbi/internal/config"
	"retailbi/internal/ml"
)

var (
	forecastHeaders = []string{"date", "forecast", "lower_bound", "upper_bound", "confidence"}
	clusterHeaders  = []string{"customer_id", "recency", "frequency", "monetary", "cluster"}
	anomalyHeaders  = []string{"date", "metric", "value", "expected", "zscore"}
)

// WriteForecast writes the daily revenue forecast artifact.
func (w *CSVWriter) WriteForecast(points []ml.ForecastPoint) error {
	records := make([][]string, 0, len(points))
	for _, p := range points {
		records = append(records, []string{
			p.Date.Format("2006-01-02"),
			formatFloat(p.Forecast),
			formatFloat(p.LowerBound),
			formatFloat(p.UpperBound),
			formatFloat(p.Confidence),
		})
	}
	return w.WriteSimpleCSV(config.ForecastFile, forecastHeaders, records)
}

// WriteClusters writes the customer cluster assignments.
func (w *CSVWriter) WriteClusters(assignments []ml.ClusterAssignment) error {
	records := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		records = append(records, []string{
			a.CustomerID,
			strconv.Itoa(a.Recency),
			formatInt(a.Frequency),
			formatFloat(a.Monetary),
			strconv.Itoa(a.Cluster),
		})
	}
	return w.WriteSimpleCSV(config.ClustersFile, clusterHeaders, records)
}

// WriteAnomalies writes the flagged (day, metric) pairs.
func (w *CSVWriter) WriteAnomalies(anomalies []ml.Anomaly) error {
	records := make([][]string, 0, len(anomalies))
	for _, a := range anomalies {
		records = append(records, []string{
			a.Date.Format("2006-01-02"),
			a.Metric,
			formatFloat(a.Value),
			formatFloat(a.Expected),
			formatFloat(a.ZScore),
		})
	}
	return w.WriteSimpleCSV(config.AnomaliesFile, anomalyHeaders, records)
}
