package etl

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"retailbi/internal/analytics"
	"retailbi/internal/config"
	"retailbi/internal/errors"
	"retailbi/internal/exporter"
	"retailbi/internal/ml"
	"retailbi/pkg/contracts/domain"
)

// Pipeline runs the full batch: extract the input CSVs, run the
// transformation engine, write the derived artifacts and the model
// collaborator outputs.
type Pipeline struct {
	cfg    *config.Config
	paths  *config.Paths
	reader *Reader
	writer *exporter.CSVWriter
	engine *analytics.Engine
	logger *slog.Logger
}

// NewPipeline wires a pipeline from configuration.
func NewPipeline(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:    cfg,
		paths:  paths,
		reader: NewReader(logger),
		writer: exporter.NewCSVWriter(paths),
		engine: analytics.NewEngine(logger),
		logger: logger.With(slog.String("component", "etl_pipeline")),
	}
}

// Run executes the batch. A failed artifact does not stop the sibling
// artifacts or the collaborator outputs; all artifact failures are
// joined into the returned error.
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now()

	sales, err := p.reader.ReadSales(p.paths.DataPath(config.FactSalesFile))
	if err != nil {
		return errors.NewParsingError("load sales ledger", err)
	}
	if len(sales) == 0 {
		return errors.NewAppValidationError("sales ledger is empty")
	}

	products, err := p.reader.ReadProducts(p.paths.DataPath(config.DimProductFile))
	if err != nil {
		return errors.NewParsingError("load product dimension", err)
	}
	p.checkReferences(sales, products)

	asOf, err := p.resolveAsOf(sales)
	if err != nil {
		return err
	}
	p.logger.Info("running transformation", slog.Time("as_of", asOf))

	result, err := p.engine.Run(ctx, sales, asOf)
	if err != nil {
		return err
	}

	if err := p.writeArtifacts(result); err != nil {
		return err
	}
	p.writeModelOutputs(result)

	p.logger.Info("pipeline complete",
		slog.Int("records", len(sales)),
		slog.Duration("elapsed", time.Since(started)))

	return stderrors.Join(result.RFMErr, result.ABCErr)
}

// resolveAsOf uses the configured as-of date when set, otherwise the
// day after the latest sale so a frozen dataset reproduces exactly.
func (p *Pipeline) resolveAsOf(sales []domain.SaleRecord) (time.Time, error) {
	asOf, ok, err := p.cfg.AsOfTime()
	if err != nil {
		return time.Time{}, errors.NewConfigError("invalid as_of date", err)
	}
	if ok {
		return asOf, nil
	}

	var latest time.Time
	for _, s := range sales {
		if s.SaleDate.After(latest) {
			latest = s.SaleDate
		}
	}
	return latest.AddDate(0, 0, 1), nil
}

// checkReferences warns about ledger rows pointing at unknown products.
// The transformation does not need the dimension, so this is advisory.
func (p *Pipeline) checkReferences(sales []domain.SaleRecord, products []domain.Product) {
	known := make(map[string]struct{}, len(products))
	for _, prod := range products {
		known[prod.ProductID] = struct{}{}
	}

	unknown := make(map[string]struct{})
	for _, s := range sales {
		if _, ok := known[s.ProductID]; !ok {
			unknown[s.ProductID] = struct{}{}
		}
	}
	if len(unknown) > 0 {
		p.logger.Warn("ledger references unknown products",
			slog.Int("distinct_products", len(unknown)))
	}
}

func (p *Pipeline) writeArtifacts(result *analytics.Result) error {
	if err := p.writer.WriteNormalizedSales(result.Sales); err != nil {
		return errors.NewStorageError("write normalized ledger", err)
	}
	if err := p.writer.WriteMonthly(result.Monthly); err != nil {
		return errors.NewStorageError("write monthly rollup", err)
	}

	if result.RFMErr == nil {
		if err := p.writer.WriteRFM(result.RFM); err != nil {
			return errors.NewStorageError("write customer segmentation", err)
		}
	} else {
		p.logger.Error("customer segmentation failed", slog.String("error", result.RFMErr.Error()))
	}

	if result.ABCErr == nil {
		if err := p.writer.WriteABC(result.ABC); err != nil {
			return errors.NewStorageError("write product classification", err)
		}
	} else {
		p.logger.Error("product classification failed", slog.String("error", result.ABCErr.Error()))
	}

	if p.cfg.Analytics.ExcelExport {
		if err := p.writer.WriteWorkbook(result.Monthly, result.RFM, result.ABC); err != nil {
			return errors.NewStorageError("write workbook", err)
		}
	}
	return nil
}

// writeModelOutputs emits the collaborator artifacts. Model failures
// are logged, never fatal; the core artifacts are already on disk.
func (p *Pipeline) writeModelOutputs(result *analytics.Result) {
	forecasts, err := ml.ForecastRevenue(result.Sales, p.cfg.Analytics.ForecastDays)
	if err != nil {
		p.logger.Warn("revenue forecast skipped", slog.String("reason", err.Error()))
	} else if err := p.writer.WriteForecast(forecasts); err != nil {
		p.logger.Error("write forecast failed", slog.String("error", err.Error()))
	}

	if result.RFMErr == nil {
		clusters, err := ml.ClusterRFM(result.RFM, p.cfg.Analytics.Clusters)
		if err != nil {
			p.logger.Warn("customer clustering skipped", slog.String("reason", err.Error()))
		} else if err := p.writer.WriteClusters(clusters); err != nil {
			p.logger.Error("write clusters failed", slog.String("error", err.Error()))
		}
	}

	anomalies := ml.NewAnomalyDetector().Detect(result.Sales)
	if len(anomalies) > 0 {
		p.logger.Info("anomalous days detected", slog.Int("count", len(anomalies)))
	}
	if err := p.writer.WriteAnomalies(anomalies); err != nil {
		p.logger.Error("write anomalies failed", slog.String("error", err.Error()))
	}
}

// Describe returns a short human summary of what the pipeline will do,
// used by the CLI.
func (p *Pipeline) Describe() string {
	return fmt.Sprintf("ledger %s -> artifacts in %s",
		p.paths.DataPath(config.FactSalesFile), p.paths.ProcessedDir)
}
