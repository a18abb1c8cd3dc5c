package etl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailbi/internal/config"
	"retailbi/internal/exporter"
	"retailbi/pkg/contracts/domain"
)

func TestArtifactReadBack(t *testing.T) {
	dir := t.TempDir()
	paths, err := config.NewPaths(config.PathsConfig{
		DataDir:      filepath.Join(dir, "data"),
		ProcessedDir: filepath.Join(dir, "processed"),
	})
	require.NoError(t, err)

	writer := exporter.NewCSVWriter(paths)
	reader := NewReader(discardLogger())

	t.Run("monthly", func(t *testing.T) {
		in := []domain.MonthlyAggregate{
			{Year: 2024, Month: 1, NetRevenue: 350, GrossProfit: 130, Quantity: 4, SaleCount: 3, AvgTicket: 116.67},
			{Year: 2024, Month: 2, NetRevenue: 120.5, GrossProfit: 40.25, Quantity: 2, SaleCount: 2, AvgTicket: 60.25},
		}
		require.NoError(t, writer.WriteMonthly(in))

		out, err := reader.ReadMonthly(paths.ProcessedPath(config.MonthlySalesFile))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("rfm", func(t *testing.T) {
		in := []domain.CustomerRFM{
			{CustomerID: "C1", Recency: 7, Frequency: 5, Monetary: 1200.5, RScore: 5, FScore: 4, MScore: 5, RFMScore: "545", Segment: domain.SegmentChampions},
		}
		require.NoError(t, writer.WriteRFM(in))

		out, err := reader.ReadRFM(paths.ProcessedPath(config.CustomerRFMFile))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("abc", func(t *testing.T) {
		in := []domain.ProductABC{
			{ProductID: "P1", Revenue: 300, Quantity: 3, CumulativeRevenue: 300, CumulativePct: 85.71, Class: domain.ClassB},
		}
		require.NoError(t, writer.WriteABC(in))

		out, err := reader.ReadABC(paths.ProcessedPath(config.ProductABCFile))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := reader.ReadMonthly(paths.ProcessedPath("nope.csv"))
		assert.Error(t, err)
	})
}
