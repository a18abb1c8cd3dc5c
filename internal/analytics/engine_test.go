package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailbi/pkg/contracts/domain"
)

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEngineRun(t *testing.T) {
	d0 := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	asOf := d0.AddDate(0, 0, 2)

	records := []domain.SaleRecord{
		{TransactionID: "T1", CustomerID: "A", ProductID: "X", SaleDate: d0, Quantity: 1, NetRevenue: 100, GrossProfit: 40},
		{TransactionID: "T2", CustomerID: "A", ProductID: "X", SaleDate: d0.AddDate(0, 0, 1), Quantity: 1, NetRevenue: 200, GrossProfit: 80},
		{TransactionID: "T3", CustomerID: "B", ProductID: "Y", SaleDate: d0, Quantity: 1, NetRevenue: 50, GrossProfit: 10},
	}

	res, err := testEngine().Run(context.Background(), records, asOf)
	require.NoError(t, err)
	require.NoError(t, res.RFMErr)
	require.NoError(t, res.ABCErr)

	t.Run("monthly rollup", func(t *testing.T) {
		require.Len(t, res.Monthly, 1)
		m := res.Monthly[0]
		assert.InDelta(t, 350.0, m.NetRevenue, 1e-6)
		assert.InDelta(t, 130.0, m.GrossProfit, 1e-6)
		assert.Equal(t, int64(3), m.SaleCount)
		assert.InDelta(t, 116.67, m.AvgTicket, 0.01)
	})

	t.Run("abc ranking and classes", func(t *testing.T) {
		require.Len(t, res.ABC, 2)
		assert.Equal(t, "X", res.ABC[0].ProductID)
		assert.InDelta(t, 300.0, res.ABC[0].Revenue, 1e-6)
		assert.InDelta(t, 85.71, res.ABC[0].CumulativePct, 0.01)
		assert.Equal(t, domain.ClassB, res.ABC[0].Class)

		assert.Equal(t, "Y", res.ABC[1].ProductID)
		assert.InDelta(t, 100.0, res.ABC[1].CumulativePct, 1e-6)
		assert.Equal(t, domain.ClassC, res.ABC[1].Class)
	})

	t.Run("rfm rows cover both customers", func(t *testing.T) {
		require.Len(t, res.RFM, 2)
		assert.Equal(t, "A", res.RFM[0].CustomerID)
		assert.Equal(t, int64(2), res.RFM[0].Frequency)
		assert.Equal(t, "B", res.RFM[1].CustomerID)
	})

	t.Run("ledger revenue conserved in rollup", func(t *testing.T) {
		var ledger, rollup float64
		for _, rec := range res.Sales {
			ledger += rec.NetRevenue
		}
		for _, m := range res.Monthly {
			rollup += m.NetRevenue
		}
		assert.InDelta(t, ledger, rollup, 1e-6)
	})
}

func TestEngineRunIndependentFailures(t *testing.T) {
	// Zero records: RFM and ABC fail structurally, the monthly rollup is
	// just empty, and the run as a whole still completes.
	res, err := testEngine().Run(context.Background(), nil, time.Now())
	require.NoError(t, err)

	assert.Empty(t, res.Monthly)

	var empty *EmptyDatasetError
	assert.True(t, errors.As(res.RFMErr, &empty))
	assert.True(t, errors.As(res.ABCErr, &empty))
}

func TestEngineRunAbortsOnMalformedInput(t *testing.T) {
	_, err := testEngine().Run(context.Background(), []domain.SaleRecord{
		{TransactionID: "BAD"}, // zero sale date
	}, time.Now())

	var malformed *MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "BAD", malformed.TransactionID)
}

func TestEngineRunIsIdempotent(t *testing.T) {
	d0 := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	records := []domain.SaleRecord{
		{TransactionID: "T1", CustomerID: "A", ProductID: "X", SaleDate: d0, Quantity: 2, NetRevenue: 80, GrossProfit: 20},
		{TransactionID: "T2", CustomerID: "B", ProductID: "Y", SaleDate: d0.AddDate(0, 0, 9), Quantity: 1, NetRevenue: 40, GrossProfit: 5},
	}
	asOf := d0.AddDate(0, 0, 30)

	first, err := testEngine().Run(context.Background(), records, asOf)
	require.NoError(t, err)
	second, err := testEngine().Run(context.Background(), records, asOf)
	require.NoError(t, err)

	assert.Equal(t, first.Monthly, second.Monthly)
	assert.Equal(t, first.RFM, second.RFM)
	assert.Equal(t, first.ABC, second.ABC)
}
