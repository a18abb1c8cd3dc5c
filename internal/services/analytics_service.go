// Package services contains the read-only query layer over the
// produced artifact files. The CSVs on disk are the storage interface;
// every call loads fresh so a new ETL run is visible immediately.
package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"retailbi/internal/config"
	"retailbi/internal/etl"
	"retailbi/internal/ml"
	"retailbi/pkg/contracts/domain"
)

// ErrNoDataFound signals that the requested slice of data is absent,
// either because the ETL has not run or the filters match nothing.
var ErrNoDataFound = errors.New("no data found")

// defaultTopLimit bounds product listings when the caller gives none.
const defaultTopLimit = 10

// KPIReport is the headline totals over the (optionally filtered)
// normalized ledger.
type KPIReport struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalProfit   float64 `json:"total_profit"`
	TotalQuantity int64   `json:"total_quantity"`
	SaleCount     int64   `json:"sale_count"`
	AvgTicket     float64 `json:"avg_ticket"`
	MarginPct     float64 `json:"margin_pct"`
	Customers     int     `json:"customers"`
	Products      int     `json:"products"`
}

// DailySale is one day of the ledger for the daily endpoint.
type DailySale struct {
	Date      string  `json:"date"`
	Revenue   float64 `json:"revenue"`
	Quantity  int64   `json:"quantity"`
	SaleCount int64   `json:"sale_count"`
}

// TopProduct joins the classification artifact with the product
// dimension.
type TopProduct struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Revenue       float64 `json:"revenue"`
	Quantity      int64   `json:"quantity"`
	CumulativePct float64 `json:"cumulative_pct"`
	Class         string  `json:"class"`
}

// SegmentStats summarizes one behavioral segment.
type SegmentStats struct {
	Segment      string  `json:"segment"`
	Customers    int     `json:"customers"`
	AvgRecency   float64 `json:"avg_recency"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgMonetary  float64 `json:"avg_monetary"`
}

// HealthStatus reports artifact availability.
type HealthStatus struct {
	Status    string          `json:"status"`
	Artifacts map[string]bool `json:"artifacts"`
	Timestamp time.Time       `json:"timestamp"`
}

// AnalyticsService serves read queries over the artifact files.
type AnalyticsService struct {
	paths  *config.Paths
	reader *etl.Reader
	logger *slog.Logger
}

// NewAnalyticsService creates the query service.
func NewAnalyticsService(paths *config.Paths, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		paths:  paths,
		reader: etl.NewReader(logger),
		logger: logger.With(slog.String("component", "analytics_service")),
	}
}

// Health reports which artifacts are present. Status is "degraded"
// when any core artifact is missing.
func (s *AnalyticsService) Health(ctx context.Context) *HealthStatus {
	artifacts := map[string]bool{}
	for _, name := range []string{
		config.FactSalesFile,
		config.MonthlySalesFile,
		config.CustomerRFMFile,
		config.ProductABCFile,
	} {
		_, err := os.Stat(s.paths.ProcessedPath(name))
		artifacts[name] = err == nil
	}

	status := "healthy"
	for _, ok := range artifacts {
		if !ok {
			status = "degraded"
			break
		}
	}

	return &HealthStatus{
		Status:    status,
		Artifacts: artifacts,
		Timestamp: time.Now().UTC(),
	}
}

// KPIs computes headline totals over the ledger, optionally restricted
// to [from, to] inclusive. Zero time values disable the bound.
func (s *AnalyticsService) KPIs(ctx context.Context, from, to time.Time) (*KPIReport, error) {
	sales, err := s.loadLedger()
	if err != nil {
		return nil, err
	}

	report := &KPIReport{}
	customers := make(map[string]struct{})
	products := make(map[string]struct{})

	for _, rec := range sales {
		if !inRange(rec.SaleDate, from, to) {
			continue
		}
		report.TotalRevenue += rec.NetRevenue
		report.TotalProfit += rec.GrossProfit
		report.TotalQuantity += rec.Quantity
		report.SaleCount++
		customers[rec.CustomerID] = struct{}{}
		products[rec.ProductID] = struct{}{}
	}

	if report.SaleCount == 0 {
		return nil, ErrNoDataFound
	}

	report.AvgTicket = round2(report.TotalRevenue / float64(report.SaleCount))
	if report.TotalRevenue != 0 {
		report.MarginPct = round2(report.TotalProfit / report.TotalRevenue * 100)
	}
	report.TotalRevenue = round2(report.TotalRevenue)
	report.TotalProfit = round2(report.TotalProfit)
	report.Customers = len(customers)
	report.Products = len(products)

	return report, nil
}

// MonthlySales returns the monthly rollup, optionally filtered to one
// year and truncated to the most recent limit months.
func (s *AnalyticsService) MonthlySales(ctx context.Context, year, limit int) ([]domain.MonthlyAggregate, error) {
	rows, err := s.reader.ReadMonthly(s.paths.ProcessedPath(config.MonthlySalesFile))
	if err != nil {
		return nil, ErrNoDataFound
	}

	if year > 0 {
		filtered := rows[:0]
		for _, m := range rows {
			if m.Year == year {
				filtered = append(filtered, m)
			}
		}
		rows = filtered
	}
	if len(rows) == 0 {
		return nil, ErrNoDataFound
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}

// DailySales aggregates the ledger per day within [from, to].
func (s *AnalyticsService) DailySales(ctx context.Context, from, to time.Time) ([]DailySale, error) {
	sales, err := s.loadLedger()
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.SaleRecord, 0, len(sales))
	for _, rec := range sales {
		if inRange(rec.SaleDate, from, to) {
			filtered = append(filtered, rec)
		}
	}

	series := ml.DailySeries(filtered)
	if len(series) == 0 {
		return nil, ErrNoDataFound
	}

	result := make([]DailySale, 0, len(series))
	for _, p := range series {
		result = append(result, DailySale{
			Date:      p.Date.Format("2006-01-02"),
			Revenue:   round2(p.Revenue),
			Quantity:  p.Quantity,
			SaleCount: p.SaleCount,
		})
	}
	return result, nil
}

// TopProducts returns the highest-revenue products, joined with the
// dimension and optionally filtered by category.
func (s *AnalyticsService) TopProducts(ctx context.Context, limit int, category string) ([]TopProduct, error) {
	abc, err := s.reader.ReadABC(s.paths.ProcessedPath(config.ProductABCFile))
	if err != nil {
		return nil, ErrNoDataFound
	}

	dimension := make(map[string]domain.Product)
	products, err := s.reader.ReadProducts(s.paths.DataPath(config.DimProductFile))
	if err != nil {
		s.logger.Warn("product dimension unavailable", slog.String("error", err.Error()))
	} else {
		for _, p := range products {
			dimension[p.ProductID] = p
		}
	}

	if limit <= 0 {
		limit = defaultTopLimit
	}

	result := make([]TopProduct, 0, limit)
	for _, row := range abc {
		dim := dimension[row.ProductID]
		if category != "" && dim.Category != category {
			continue
		}
		result = append(result, TopProduct{
			ProductID:     row.ProductID,
			Name:          dim.Name,
			Category:      dim.Category,
			Revenue:       row.Revenue,
			Quantity:      row.Quantity,
			CumulativePct: row.CumulativePct,
			Class:         row.Class,
		})
		if len(result) == limit {
			break
		}
	}

	if len(result) == 0 {
		return nil, ErrNoDataFound
	}
	return result, nil
}

// segmentOrder fixes the presentation order of the segment summary.
var segmentOrder = []string{
	domain.SegmentChampions,
	domain.SegmentLoyal,
	domain.SegmentPotential,
	domain.SegmentAtRisk,
	domain.SegmentLost,
}

// CustomerSegments summarizes the segmentation artifact per segment.
func (s *AnalyticsService) CustomerSegments(ctx context.Context) ([]SegmentStats, error) {
	rows, err := s.reader.ReadRFM(s.paths.ProcessedPath(config.CustomerRFMFile))
	if err != nil || len(rows) == 0 {
		return nil, ErrNoDataFound
	}

	type accum struct {
		count     int
		recency   float64
		frequency float64
		monetary  float64
	}
	bySegment := make(map[string]*accum)
	for _, r := range rows {
		a, ok := bySegment[r.Segment]
		if !ok {
			a = &accum{}
			bySegment[r.Segment] = a
		}
		a.count++
		a.recency += float64(r.Recency)
		a.frequency += float64(r.Frequency)
		a.monetary += r.Monetary
	}

	var result []SegmentStats
	for _, segment := range segmentOrder {
		a, ok := bySegment[segment]
		if !ok {
			continue
		}
		n := float64(a.count)
		result = append(result, SegmentStats{
			Segment:      segment,
			Customers:    a.count,
			AvgRecency:   round2(a.recency / n),
			AvgFrequency: round2(a.frequency / n),
			AvgMonetary:  round2(a.monetary / n),
		})
	}
	return result, nil
}

// Categories lists the distinct product categories, sorted.
func (s *AnalyticsService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.reader.ReadProducts(s.paths.DataPath(config.DimProductFile))
	if err != nil || len(products) == 0 {
		return nil, ErrNoDataFound
	}

	seen := make(map[string]struct{})
	var categories []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// loadLedger prefers the normalized ledger, falling back to the raw
// input when the ETL has not run yet.
func (s *AnalyticsService) loadLedger() ([]domain.SaleRecord, error) {
	processed := s.paths.ProcessedPath(config.FactSalesFile)
	if _, err := os.Stat(processed); err == nil {
		return s.reader.ReadSales(processed)
	}

	raw := s.paths.DataPath(config.FactSalesFile)
	if _, err := os.Stat(raw); err == nil {
		return s.reader.ReadSales(raw)
	}
	return nil, ErrNoDataFound
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
