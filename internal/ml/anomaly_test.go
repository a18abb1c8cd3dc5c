package ml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailbi/pkg/contracts/domain"
)

func TestDetectFlagsRevenueSpike(t *testing.T) {
	d0 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	spikeDay := d0.AddDate(0, 0, 15)

	var records []domain.SaleRecord
	for i := 0; i < 30; i++ {
		day := d0.AddDate(0, 0, i)
		revenue := 100.0
		if day.Equal(spikeDay) {
			revenue = 10000
		}
		records = append(records, saleOn(day, revenue, 1, 0))
	}

	anomalies := NewAnomalyDetector().Detect(records)
	require.Len(t, anomalies, 1)

	a := anomalies[0]
	assert.Equal(t, spikeDay, a.Date)
	assert.Equal(t, "revenue", a.Metric)
	assert.Equal(t, 10000.0, a.Value)
	assert.Greater(t, a.ZScore, 3.0)
}

func TestDetectQuietLedger(t *testing.T) {
	d0 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	var records []domain.SaleRecord
	for i := 0; i < 30; i++ {
		records = append(records, saleOn(d0.AddDate(0, 0, i), 100, 1, 5))
	}

	// constant metrics have zero variance, nothing to flag
	assert.Empty(t, NewAnomalyDetector().Detect(records))
}

func TestDetectEmptyInput(t *testing.T) {
	assert.Nil(t, NewAnomalyDetector().Detect(nil))
}
