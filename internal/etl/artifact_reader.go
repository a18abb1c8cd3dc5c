package etl

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"retailbi/pkg/contracts/domain"
)

// Artifact read-back. The query-serving layer treats the produced CSVs
// as its storage, these loaders are its read path.

// ReadMonthly loads the monthly rollup artifact.
func (r *Reader) ReadMonthly(path string) ([]domain.MonthlyAggregate, error) {
	var rows []domain.MonthlyAggregate
	err := readArtifact(path, []string{"year", "month", "net_revenue", "gross_profit", "quantity", "sale_count", "avg_ticket"},
		func(get func(string) string) error {
			year, err := strconv.Atoi(get("year"))
			if err != nil {
				return fmt.Errorf("year: %w", err)
			}
			month, err := strconv.Atoi(get("month"))
			if err != nil {
				return fmt.Errorf("month: %w", err)
			}
			revenue, err := strconv.ParseFloat(get("net_revenue"), 64)
			if err != nil {
				return fmt.Errorf("net_revenue: %w", err)
			}
			profit, err := strconv.ParseFloat(get("gross_profit"), 64)
			if err != nil {
				return fmt.Errorf("gross_profit: %w", err)
			}
			quantity, err := strconv.ParseInt(get("quantity"), 10, 64)
			if err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
			count, err := strconv.ParseInt(get("sale_count"), 10, 64)
			if err != nil {
				return fmt.Errorf("sale_count: %w", err)
			}
			ticket, err := strconv.ParseFloat(get("avg_ticket"), 64)
			if err != nil {
				return fmt.Errorf("avg_ticket: %w", err)
			}
			rows = append(rows, domain.MonthlyAggregate{
				Year: year, Month: month,
				NetRevenue: revenue, GrossProfit: profit,
				Quantity: quantity, SaleCount: count, AvgTicket: ticket,
			})
			return nil
		})
	return rows, err
}

// ReadRFM loads the customer segmentation artifact.
func (r *Reader) ReadRFM(path string) ([]domain.CustomerRFM, error) {
	var rows []domain.CustomerRFM
	err := readArtifact(path, []string{"customer_id", "recency", "frequency", "monetary", "r_score", "f_score", "m_score", "rfm_score", "segment"},
		func(get func(string) string) error {
			recency, err := strconv.Atoi(get("recency"))
			if err != nil {
				return fmt.Errorf("recency: %w", err)
			}
			frequency, err := strconv.ParseInt(get("frequency"), 10, 64)
			if err != nil {
				return fmt.Errorf("frequency: %w", err)
			}
			monetary, err := strconv.ParseFloat(get("monetary"), 64)
			if err != nil {
				return fmt.Errorf("monetary: %w", err)
			}
			rScore, err := strconv.Atoi(get("r_score"))
			if err != nil {
				return fmt.Errorf("r_score: %w", err)
			}
			fScore, err := strconv.Atoi(get("f_score"))
			if err != nil {
				return fmt.Errorf("f_score: %w", err)
			}
			mScore, err := strconv.Atoi(get("m_score"))
			if err != nil {
				return fmt.Errorf("m_score: %w", err)
			}
			rows = append(rows, domain.CustomerRFM{
				CustomerID: get("customer_id"),
				Recency:    recency,
				Frequency:  frequency,
				Monetary:   monetary,
				RScore:     rScore,
				FScore:     fScore,
				MScore:     mScore,
				RFMScore:   get("rfm_score"),
				Segment:    get("segment"),
			})
			return nil
		})
	return rows, err
}

// ReadABC loads the product classification artifact.
func (r *Reader) ReadABC(path string) ([]domain.ProductABC, error) {
	var rows []domain.ProductABC
	err := readArtifact(path, []string{"product_id", "revenue", "quantity", "cumulative_revenue", "cumulative_pct", "class"},
		func(get func(string) string) error {
			revenue, err := strconv.ParseFloat(get("revenue"), 64)
			if err != nil {
				return fmt.Errorf("revenue: %w", err)
			}
			quantity, err := strconv.ParseInt(get("quantity"), 10, 64)
			if err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
			cumRevenue, err := strconv.ParseFloat(get("cumulative_revenue"), 64)
			if err != nil {
				return fmt.Errorf("cumulative_revenue: %w", err)
			}
			cumPct, err := strconv.ParseFloat(get("cumulative_pct"), 64)
			if err != nil {
				return fmt.Errorf("cumulative_pct: %w", err)
			}
			rows = append(rows, domain.ProductABC{
				ProductID:         get("product_id"),
				Revenue:           revenue,
				Quantity:          quantity,
				CumulativeRevenue: cumRevenue,
				CumulativePct:     cumPct,
				Class:             get("class"),
			})
			return nil
		})
	return rows, err
}

// readArtifact iterates an artifact file, handing each row to parse via
// a column getter.
func readArtifact(path string, required []string, parse func(get func(string) string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read artifact header: %w", err)
	}
	cols, err := columnIndex(header, required...)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", path, err)
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("artifact %s line %d: %w", path, line, err)
		}
		get := func(name string) string { return row[cols[name]] }
		if err := parse(get); err != nil {
			return fmt.Errorf("artifact %s line %d: %w", path, line, err)
		}
	}
}
