package etl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailbi/internal/config"
)

const productFixture = "product_id,name,category,unit_cost,unit_price\n" +
	"P1,Espresso Beans,Grocery,4.50,9.99\n" +
	"P2,Travel Mug,Home,6.00,14.99\n"

func newTestPipeline(t *testing.T, ledger string) (*Pipeline, *config.Paths) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Paths = config.PathsConfig{
		DataDir:      filepath.Join(dir, "data"),
		ProcessedDir: filepath.Join(dir, "data", "processed"),
		LogsDir:      filepath.Join(dir, "logs"),
	}
	cfg.Analytics.ForecastDays = 90
	cfg.Analytics.Clusters = 2
	cfg.Analytics.ExcelExport = true

	paths, err := config.NewPaths(cfg.Paths)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	require.NoError(t, os.WriteFile(paths.DataPath(config.FactSalesFile), []byte(ledger), 0644))
	require.NoError(t, os.WriteFile(paths.DataPath(config.DimProductFile), []byte(productFixture), 0644))

	return NewPipeline(cfg, paths, discardLogger()), paths
}

func TestPipelineRun(t *testing.T) {
	ledger := "transaction_id,customer_id,product_id,sale_date,quantity,net_revenue,gross_profit,discount_pct\n" +
		"T1,C1,P1,2024-03-01,2,100,40,0\n" +
		"T2,C1,P1,2024-03-10,1,200,80,5\n" +
		"T3,C2,P2,2024-03-16,1,50,10,0\n"

	pipeline, paths := newTestPipeline(t, ledger)

	require.NoError(t, pipeline.Run(context.Background()))

	for _, name := range []string{
		config.FactSalesFile,
		config.MonthlySalesFile,
		config.CustomerRFMFile,
		config.ProductABCFile,
		config.ClustersFile,
		config.AnomaliesFile,
		config.WorkbookFile,
	} {
		assert.FileExists(t, paths.ProcessedPath(name), name)
	}

	// too few observed days for a forecast, artifact skipped
	assert.NoFileExists(t, paths.ProcessedPath(config.ForecastFile))

	monthly, err := os.ReadFile(paths.ProcessedPath(config.MonthlySalesFile))
	require.NoError(t, err)
	assert.Contains(t, string(monthly), "2024,3,350.00,130.00,4,3,116.67")

	rfm, err := os.ReadFile(paths.ProcessedPath(config.CustomerRFMFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(rfm)), "\n")
	assert.Len(t, lines, 3) // header + two customers
	// as-of defaults to the day after the last sale
	assert.Contains(t, lines[2], "C2,1,")

	abc, err := os.ReadFile(paths.ProcessedPath(config.ProductABCFile))
	require.NoError(t, err)
	assert.Contains(t, string(abc), "P1,300.00")
	assert.Contains(t, string(abc), ",100.00,") // cumulative closure on the last rank
}

func TestPipelineArtifactIsolation(t *testing.T) {
	// All-zero revenue sinks the product classification but the other
	// artifacts still land on disk.
	ledger := "transaction_id,customer_id,product_id,sale_date,quantity,net_revenue,gross_profit,discount_pct\n" +
		"T1,C1,P1,2024-03-01,1,0,0,0\n" +
		"T2,C2,P2,2024-03-02,1,0,0,0\n"

	pipeline, paths := newTestPipeline(t, ledger)

	err := pipeline.Run(context.Background())
	require.Error(t, err)

	assert.FileExists(t, paths.ProcessedPath(config.MonthlySalesFile))
	assert.FileExists(t, paths.ProcessedPath(config.CustomerRFMFile))
	assert.NoFileExists(t, paths.ProcessedPath(config.ProductABCFile))
}

func TestPipelineMalformedLedger(t *testing.T) {
	ledger := "transaction_id,customer_id,product_id,sale_date,quantity,net_revenue,gross_profit,discount_pct\n" +
		"T1,C1,P1,garbage,1,10,1,0\n"

	pipeline, paths := newTestPipeline(t, ledger)

	err := pipeline.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PARSING")

	assert.NoFileExists(t, paths.ProcessedPath(config.MonthlySalesFile))
}

func TestPipelineFixedAsOf(t *testing.T) {
	ledger := "transaction_id,customer_id,product_id,sale_date,quantity,net_revenue,gross_profit,discount_pct\n" +
		"T1,C1,P1,2024-03-01,1,100,40,0\n" +
		"T2,C2,P2,2024-03-11,1,50,10,0\n"

	pipeline, paths := newTestPipeline(t, ledger)
	pipeline.cfg.Analytics.AsOf = "2024-03-21"

	require.NoError(t, pipeline.Run(context.Background()))

	rfm, err := os.ReadFile(paths.ProcessedPath(config.CustomerRFMFile))
	require.NoError(t, err)
	assert.Contains(t, string(rfm), "C1,20,")
	assert.Contains(t, string(rfm), "C2,10,")
}
