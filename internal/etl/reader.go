package etl

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"retailbi/internal/analytics"
	"retailbi/pkg/contracts/domain"
)

// Reader loads the raw input CSVs into domain records. Any unparseable
// field aborts the load with a MalformedRecordError naming the line and
// transaction, correctness over availability.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger.With(slog.String("component", "etl_reader"))}
}

// ReadSales loads the sales ledger. Only the raw columns are consumed,
// so a previously normalized ledger (with derived columns appended)
// reads back cleanly.
func (r *Reader) ReadSales(path string) ([]domain.SaleRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sales ledger: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read sales header: %w", err)
	}
	cols, err := columnIndex(header, "transaction_id", "customer_id", "product_id",
		"sale_date", "quantity", "net_revenue", "gross_profit", "discount_pct")
	if err != nil {
		return nil, fmt.Errorf("sales ledger: %w", err)
	}

	var records []domain.SaleRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &analytics.MalformedRecordError{Line: line, Field: "row", Err: err}
		}

		txID := row[cols["transaction_id"]]

		saleDate, err := parseDate(row[cols["sale_date"]])
		if err != nil {
			return nil, &analytics.MalformedRecordError{TransactionID: txID, Field: "sale_date", Line: line, Err: err}
		}
		quantity, err := strconv.ParseInt(row[cols["quantity"]], 10, 64)
		if err != nil {
			return nil, &analytics.MalformedRecordError{TransactionID: txID, Field: "quantity", Line: line, Err: err}
		}
		netRevenue, err := strconv.ParseFloat(row[cols["net_revenue"]], 64)
		if err != nil {
			return nil, &analytics.MalformedRecordError{TransactionID: txID, Field: "net_revenue", Line: line, Err: err}
		}
		grossProfit, err := strconv.ParseFloat(row[cols["gross_profit"]], 64)
		if err != nil {
			return nil, &analytics.MalformedRecordError{TransactionID: txID, Field: "gross_profit", Line: line, Err: err}
		}
		discountPct, err := strconv.ParseFloat(row[cols["discount_pct"]], 64)
		if err != nil {
			return nil, &analytics.MalformedRecordError{TransactionID: txID, Field: "discount_pct", Line: line, Err: err}
		}

		records = append(records, domain.SaleRecord{
			TransactionID: txID,
			CustomerID:    row[cols["customer_id"]],
			ProductID:     row[cols["product_id"]],
			SaleDate:      saleDate,
			Quantity:      quantity,
			NetRevenue:    netRevenue,
			GrossProfit:   grossProfit,
			DiscountPct:   discountPct,
		})
	}

	r.logger.Info("loaded sales ledger",
		slog.String("path", path),
		slog.Int("records", len(records)))
	return records, nil
}

// ReadProducts loads the product dimension.
func (r *Reader) ReadProducts(path string) ([]domain.Product, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open product dimension: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read product header: %w", err)
	}
	cols, err := columnIndex(header, "product_id", "name", "category", "unit_cost", "unit_price")
	if err != nil {
		return nil, fmt.Errorf("product dimension: %w", err)
	}

	var products []domain.Product
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &analytics.MalformedRecordError{Line: line, Field: "row", Err: err}
		}

		id := row[cols["product_id"]]

		unitCost, err := strconv.ParseFloat(row[cols["unit_cost"]], 64)
		if err != nil {
			return nil, &analytics.MalformedRecordError{TransactionID: id, Field: "unit_cost", Line: line, Err: err}
		}
		unitPrice, err := strconv.ParseFloat(row[cols["unit_price"]], 64)
		if err != nil {
			return nil, &analytics.MalformedRecordError{TransactionID: id, Field: "unit_price", Line: line, Err: err}
		}

		products = append(products, domain.Product{
			ProductID: id,
			Name:      row[cols["name"]],
			Category:  row[cols["category"]],
			UnitCost:  unitCost,
			UnitPrice: unitPrice,
		})
	}

	r.logger.Info("loaded product dimension",
		slog.String("path", path),
		slog.Int("products", len(products)))
	return products, nil
}

// columnIndex maps required column names to their positions. The first
// header cell may carry a UTF-8 BOM.
func columnIndex(header []string, required ...string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\xEF\xBB\xBF")
		}
		index[strings.TrimSpace(name)] = i
	}

	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return index, nil
}

// parseDate accepts a bare date or a date with time.
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}
