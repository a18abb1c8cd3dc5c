package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"retailbi/internal/config"
	"retailbi/pkg/contracts/domain"
)

func testWriter(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()
	dir := t.TempDir()
	paths, err := config.NewPaths(config.PathsConfig{
		DataDir:      filepath.Join(dir, "data"),
		ProcessedDir: filepath.Join(dir, "data", "processed"),
		LogsDir:      filepath.Join(dir, "logs"),
	})
	require.NoError(t, err)
	return NewCSVWriter(paths), paths
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteCSVWithBOM(t *testing.T) {
	w, paths := testWriter(t)

	err := w.WriteCSV("report.csv", WriteOptions{
		Headers:   []string{"a", "b"},
		Records:   [][]string{{"1", "2"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	content := readFile(t, paths.ProcessedPath("report.csv"))
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"))
	assert.Contains(t, content, "a,b\n1,2\n")
}

func TestWriteMonthly(t *testing.T) {
	w, paths := testWriter(t)

	err := w.WriteMonthly([]domain.MonthlyAggregate{
		{Year: 2024, Month: 1, NetRevenue: 300, GrossProfit: 120.5, Quantity: 3, SaleCount: 2, AvgTicket: 150},
	})
	require.NoError(t, err)

	content := readFile(t, paths.ProcessedPath(config.MonthlySalesFile))
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "year,month,net_revenue,gross_profit,quantity,sale_count,avg_ticket", lines[0])
	assert.Equal(t, "2024,1,300.00,120.50,3,2,150.00", lines[1])
}

func TestWriteRFM(t *testing.T) {
	w, paths := testWriter(t)

	err := w.WriteRFM([]domain.CustomerRFM{
		{CustomerID: "C001", Recency: 12, Frequency: 5, Monetary: 1234.5, RScore: 4, FScore: 5, MScore: 5, RFMScore: "455", Segment: domain.SegmentChampions},
	})
	require.NoError(t, err)

	content := readFile(t, paths.ProcessedPath(config.CustomerRFMFile))
	assert.Contains(t, content, "customer_id,recency,frequency,monetary,r_score,f_score,m_score,rfm_score,segment")
	assert.Contains(t, content, "C001,12,5,1234.50,4,5,5,455,Champions")
}

func TestWriteABC(t *testing.T) {
	w, paths := testWriter(t)

	err := w.WriteABC([]domain.ProductABC{
		{ProductID: "P01", Revenue: 300, Quantity: 3, CumulativeRevenue: 300, CumulativePct: 85.71, Class: domain.ClassB},
	})
	require.NoError(t, err)

	content := readFile(t, paths.ProcessedPath(config.ProductABCFile))
	assert.Contains(t, content, "P01,300.00,3,300.00,85.71,B")
}

func TestWriteNormalizedSales(t *testing.T) {
	w, paths := testWriter(t)

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	err := w.WriteNormalizedSales([]domain.SaleRecord{
		{
			TransactionID: "T1", CustomerID: "C1", ProductID: "P1",
			SaleDate: date, Quantity: 2, NetRevenue: 100, GrossProfit: 40, DiscountPct: 5,
			Year: 2024, Month: 3, Weekday: 4, MarginPct: 40,
		},
		{
			TransactionID: "T2", CustomerID: "C1", ProductID: "P1",
			SaleDate: date, Quantity: 1, NetRevenue: 0, GrossProfit: 0, DiscountPct: 0,
			Year: 2024, Month: 3, Weekday: 4, MarginPct: math.NaN(),
		},
	})
	require.NoError(t, err)

	content := readFile(t, paths.ProcessedPath(config.FactSalesFile))
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "T1,C1,P1,2024-03-15,2,100.00,40.00,5.00,2024,3,4,40.00", lines[1])
	// undefined margin stays an empty cell
	assert.Equal(t, "T2,C1,P1,2024-03-15,1,0.00,0.00,0.00,2024,3,4,", lines[2])
}

func TestStreamWriter(t *testing.T) {
	w, paths := testWriter(t)

	stream, err := w.CreateStreamWriter("stream.csv", []string{"id", "value"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"1", "a"}))
	require.NoError(t, stream.WriteRecord([]string{"2", "b"}))
	require.NoError(t, stream.Close())

	content := readFile(t, paths.ProcessedPath("stream.csv"))
	assert.Equal(t, "id,value\n1,a\n2,b\n", content)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "13.40", formatFloat(13.4))
	assert.Equal(t, "0.00", formatFloat(0))
	assert.Equal(t, "", formatOptionalFloat(math.NaN()))
	assert.Equal(t, "2.50", formatOptionalFloat(2.5))
	assert.Equal(t, "42", formatInt(42))
}

func TestWriteWorkbook(t *testing.T) {
	w, paths := testWriter(t)

	err := w.WriteWorkbook(
		[]domain.MonthlyAggregate{{Year: 2024, Month: 1, NetRevenue: 350, GrossProfit: 130, Quantity: 3, SaleCount: 3, AvgTicket: 116.67}},
		[]domain.CustomerRFM{{CustomerID: "C1", Recency: 7, Frequency: 2, Monetary: 300, RScore: 5, FScore: 5, MScore: 5, RFMScore: "555", Segment: domain.SegmentChampions}},
		[]domain.ProductABC{{ProductID: "X", Revenue: 300, Quantity: 3, CumulativeRevenue: 300, CumulativePct: 85.71, Class: domain.ClassB}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.ProcessedPath(config.WorkbookFile))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"MonthlySales", "CustomerRFM", "ProductABC"}, f.GetSheetList())

	cell, err := f.GetCellValue("CustomerRFM", "A2")
	require.NoError(t, err)
	assert.Equal(t, "C1", cell)

	segment, err := f.GetCellValue("CustomerRFM", "I2")
	require.NoError(t, err)
	assert.Equal(t, "Champions", segment)
}
