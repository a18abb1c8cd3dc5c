package exporter

import (
	"strconv"

	"retailbi/internal/config"
	"retailbi/pkg/contracts/domain"
)

// Column layouts of the derived artifact files. These are the read
// contract of the query-serving layer, keep them stable.
var (
	monthlyHeaders = []string{"year", "month", "net_revenue", "gross_profit", "quantity", "sale_count", "avg_ticket"}
	rfmHeaders     = []string{"customer_id", "recency", "frequency", "monetary", "r_score", "f_score", "m_score", "rfm_score", "segment"}
	abcHeaders     = []string{"product_id", "revenue", "quantity", "cumulative_revenue", "cumulative_pct", "class"}
	salesHeaders   = []string{"transaction_id", "customer_id", "product_id", "sale_date", "quantity", "net_revenue", "gross_profit", "discount_pct", "year", "month", "weekday", "margin_pct"}
)

// WriteMonthly writes the monthly rollup artifact.
func (w *CSVWriter) WriteMonthly(rows []domain.MonthlyAggregate) error {
	records := make([][]string, 0, len(rows))
	for _, m := range rows {
		records = append(records, []string{
			strconv.Itoa(m.Year),
			strconv.Itoa(m.Month),
			formatFloat(m.NetRevenue),
			formatFloat(m.GrossProfit),
			formatInt(m.Quantity),
			formatInt(m.SaleCount),
			formatFloat(m.AvgTicket),
		})
	}
	return w.WriteSimpleCSV(config.MonthlySalesFile, monthlyHeaders, records)
}

// WriteRFM writes the per-customer segmentation artifact.
func (w *CSVWriter) WriteRFM(rows []domain.CustomerRFM) error {
	records := make([][]string, 0, len(rows))
	for _, c := range rows {
		records = append(records, []string{
			c.CustomerID,
			strconv.Itoa(c.Recency),
			formatInt(c.Frequency),
			formatFloat(c.Monetary),
			strconv.Itoa(c.RScore),
			strconv.Itoa(c.FScore),
			strconv.Itoa(c.MScore),
			c.RFMScore,
			c.Segment,
		})
	}
	return w.WriteSimpleCSV(config.CustomerRFMFile, rfmHeaders, records)
}

// WriteABC writes the per-product classification artifact.
func (w *CSVWriter) WriteABC(rows []domain.ProductABC) error {
	records := make([][]string, 0, len(rows))
	for _, p := range rows {
		records = append(records, []string{
			p.ProductID,
			formatFloat(p.Revenue),
			formatInt(p.Quantity),
			formatFloat(p.CumulativeRevenue),
			formatFloat(p.CumulativePct),
			p.Class,
		})
	}
	return w.WriteSimpleCSV(config.ProductABCFile, abcHeaders, records)
}

// WriteNormalizedSales rewrites the sales ledger with the derived
// calendar and margin columns appended. Large ledgers go through the
// stream writer.
func (w *CSVWriter) WriteNormalizedSales(rows []domain.SaleRecord) error {
	stream, err := w.CreateStreamWriter(config.FactSalesFile, salesHeaders)
	if err != nil {
		return err
	}

	for _, s := range rows {
		record := []string{
			s.TransactionID,
			s.CustomerID,
			s.ProductID,
			s.SaleDate.Format("2006-01-02"),
			formatInt(s.Quantity),
			formatFloat(s.NetRevenue),
			formatFloat(s.GrossProfit),
			formatFloat(s.DiscountPct),
			strconv.Itoa(s.Year),
			strconv.Itoa(s.Month),
			strconv.Itoa(s.Weekday),
			formatOptionalFloat(s.MarginPct),
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return err
		}
	}

	return stream.Close()
}
