package ml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailbi/pkg/contracts/domain"
)

// monday is a fixed Monday used as the series origin.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func dailyLedger(days int, revenue func(day int) float64) []domain.SaleRecord {
	records := make([]domain.SaleRecord, 0, days)
	for i := 0; i < days; i++ {
		records = append(records, saleOn(monday.AddDate(0, 0, i), revenue(i), 1, 0))
	}
	return records
}

func TestForecastRevenueTrend(t *testing.T) {
	// 28 days of a perfect upward line.
	records := dailyLedger(28, func(day int) float64 { return 100 + 10*float64(day) })

	forecasts, err := ForecastRevenue(records, 7)
	require.NoError(t, err)
	require.Len(t, forecasts, 7)

	last := monday.AddDate(0, 0, 27)
	for i, f := range forecasts {
		assert.Equal(t, last.AddDate(0, 0, i+1), f.Date)
		assert.InDelta(t, 100+10*float64(28+i), f.Forecast, 1e-6)
		assert.LessOrEqual(t, f.LowerBound, f.Forecast)
		assert.GreaterOrEqual(t, f.UpperBound, f.Forecast)
	}

	// perfect fit keeps confidence high on day one
	assert.Greater(t, forecasts[0].Confidence, 0.9)
}

func TestForecastRevenueWeekdaySeasonality(t *testing.T) {
	// Flat revenue with a strong Monday boost over four full weeks.
	records := dailyLedger(28, func(day int) float64 {
		if day%7 == 0 {
			return 170
		}
		return 100
	})

	forecasts, err := ForecastRevenue(records, 14)
	require.NoError(t, err)

	byWeekday := make(map[int]float64)
	for _, f := range forecasts {
		byWeekday[mondayIndex(f.Date)] = f.Forecast
	}

	// Monday forecasts carry the boost, the rest stay near the base.
	assert.Greater(t, byWeekday[0], byWeekday[1]+40)
	assert.Greater(t, byWeekday[0], byWeekday[4]+40)
}

func TestForecastRevenueInsufficientData(t *testing.T) {
	records := dailyLedger(5, func(int) float64 { return 100 })

	_, err := ForecastRevenue(records, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data points")
}

func TestForecastRevenueInvalidHorizon(t *testing.T) {
	records := dailyLedger(28, func(int) float64 { return 100 })

	_, err := ForecastRevenue(records, 0)
	assert.Error(t, err)
}
