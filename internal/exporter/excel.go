package exporter

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"retailbi/internal/config"
	"retailbi/pkg/contracts/domain"
)

// WriteWorkbook writes the three artifacts into a single Excel workbook,
// one sheet per artifact.
func (w *CSVWriter) WriteWorkbook(monthly []domain.MonthlyAggregate, rfm []domain.CustomerRFM, abc []domain.ProductABC) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "MonthlySales", monthlyHeaders, func(row func(...interface{})) {
		for _, m := range monthly {
			row(m.Year, m.Month, m.NetRevenue, m.GrossProfit, m.Quantity, m.SaleCount, m.AvgTicket)
		}
	}); err != nil {
		return err
	}

	if err := writeSheet(f, "CustomerRFM", rfmHeaders, func(row func(...interface{})) {
		for _, c := range rfm {
			row(c.CustomerID, c.Recency, c.Frequency, c.Monetary, c.RScore, c.FScore, c.MScore, c.RFMScore, c.Segment)
		}
	}); err != nil {
		return err
	}

	if err := writeSheet(f, "ProductABC", abcHeaders, func(row func(...interface{})) {
		for _, p := range abc {
			row(p.ProductID, p.Revenue, p.Quantity, p.CumulativeRevenue, p.CumulativePct, p.Class)
		}
	}); err != nil {
		return err
	}

	// Drop the default sheet created by excelize.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	path := w.resolvePath(config.WorkbookFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeSheet creates a sheet, writes headers then streams rows via the
// callback.
func writeSheet(f *excelize.File, name string, headers []string, fill func(row func(...interface{}))) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to create stream writer for %s: %w", name, err)
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("failed to write headers for %s: %w", name, err)
	}

	rowIdx := 2
	var rowErr error
	fill(func(values ...interface{}) {
		if rowErr != nil {
			return
		}
		for i, v := range values {
			// Excel has no NaN cell value, leave the cell empty.
			if fv, ok := v.(float64); ok && math.IsNaN(fv) {
				values[i] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			rowErr = err
			return
		}
		if err := sw.SetRow(cell, values); err != nil {
			rowErr = err
			return
		}
		rowIdx++
	})
	if rowErr != nil {
		return fmt.Errorf("failed to write rows for %s: %w", name, rowErr)
	}

	return sw.Flush()
}
