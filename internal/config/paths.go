package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Canonical artifact and input file names. These names are the contract
// between the ETL runner, the exporters and the query-serving layer.
const (
	FactSalesFile    = "fact_sales.csv"
	DimProductFile   = "dim_product.csv"
	MonthlySalesFile = "monthly_sales.csv"
	CustomerRFMFile  = "customer_rfm.csv"
	ProductABCFile   = "product_abc.csv"
	ForecastFile     = "sales_forecast.csv"
	ClustersFile     = "customer_clusters.csv"
	AnomaliesFile    = "sales_anomalies.csv"
	WorkbookFile     = "retail_analytics.xlsx"
)

// Paths resolves the directory layout for input data, derived artifacts
// and logs.
type Paths struct {
	DataDir      string
	ProcessedDir string
	LogsDir      string
}

// NewPaths builds a Paths from configuration, resolving relative
// directories against the working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	p := &Paths{
		DataDir:      cfg.DataDir,
		ProcessedDir: cfg.ProcessedDir,
		LogsDir:      cfg.LogsDir,
	}

	for _, dir := range []*string{&p.DataDir, &p.ProcessedDir, &p.LogsDir} {
		if *dir == "" {
			continue
		}
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, fmt.Errorf("resolve path %s: %w", *dir, err)
		}
		*dir = abs
	}

	return p, nil
}

// EnsureDirectories creates the configured directories if missing.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ProcessedDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DataPath returns the full path of a raw input file.
func (p *Paths) DataPath(name string) string {
	return filepath.Join(p.DataDir, name)
}

// ProcessedPath returns the full path of a derived artifact file.
func (p *Paths) ProcessedPath(name string) string {
	return filepath.Join(p.ProcessedDir, name)
}

// LogPath returns the full path of a log file.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}
