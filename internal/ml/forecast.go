package ml

import (
	"fmt"
	"math"
	"time"

	"retailbi/pkg/contracts/domain"
)

// minForecastPoints is the minimum number of observed days required to
// fit the trend and the weekday profile.
const minForecastPoints = 14

// ForecastPoint is one forecasted day of revenue.
type ForecastPoint struct {
	Date       time.Time
	Forecast   float64
	LowerBound float64
	UpperBound float64
	Confidence float64
}

// ForecastRevenue fits a linear trend plus weekday seasonality to the
// daily revenue series and extrapolates horizon days past the last
// observed day. Bounds are a 95% interval from the residual spread,
// widening with distance.
func ForecastRevenue(records []domain.SaleRecord, horizon int) ([]ForecastPoint, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", horizon)
	}

	series := DailySeries(records)
	if len(series) < minForecastPoints {
		return nil, fmt.Errorf("insufficient data points: need %d, got %d", minForecastPoints, len(series))
	}

	baseDate := series[0].Date
	x := make([]float64, len(series))
	y := make([]float64, len(series))
	for i, p := range series {
		x[i] = p.Date.Sub(baseDate).Hours() / 24.0
		y[i] = p.Revenue
	}

	slope, intercept, rSquared := linearRegression(x, y)

	// Weekday profile: mean residual per weekday, Monday first.
	var offsets [7]float64
	var counts [7]int
	for i, p := range series {
		wd := mondayIndex(p.Date)
		offsets[wd] += y[i] - (slope*x[i] + intercept)
		counts[wd]++
	}
	for wd := range offsets {
		if counts[wd] > 0 {
			offsets[wd] /= float64(counts[wd])
		}
	}

	// Residual spread after removing trend and seasonality.
	var sumSq float64
	for i, p := range series {
		predicted := slope*x[i] + intercept + offsets[mondayIndex(p.Date)]
		residual := y[i] - predicted
		sumSq += residual * residual
	}
	stdError := math.Sqrt(sumSq / float64(len(series)))

	lastDate := series[len(series)-1].Date
	lastDays := lastDate.Sub(baseDate).Hours() / 24.0

	forecasts := make([]ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		date := lastDate.AddDate(0, 0, i)
		value := slope*(lastDays+float64(i)) + intercept + offsets[mondayIndex(date)]

		margin := 1.96 * stdError * math.Sqrt(1+float64(i)*0.1)
		confidence := rSquared * math.Exp(-float64(i)*0.01)

		forecasts = append(forecasts, ForecastPoint{
			Date:       date,
			Forecast:   value,
			LowerBound: value - margin,
			UpperBound: value + margin,
			Confidence: confidence,
		})
	}

	return forecasts, nil
}

func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
