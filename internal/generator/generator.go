// Package generator produces a synthetic retail dataset: a product
// dimension and a sales ledger with seasonal weighting. Everything is
// driven by a seeded source so a given seed reproduces the same files.
package generator

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"retailbi/internal/config"
	"retailbi/internal/exporter"
	"retailbi/pkg/contracts/domain"
)

// Options sizes the synthetic dataset.
type Options struct {
	Products  int
	Customers int
	Sales     int
	StartDate time.Time
	EndDate   time.Time
	Seed      int64
}

// DefaultOptions covers one year of trading.
func DefaultOptions() Options {
	return Options{
		Products:  40,
		Customers: 300,
		Sales:     5000,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Seed:      42,
	}
}

var categories = []string{"Grocery", "Electronics", "Home", "Clothing", "Beauty", "Sports"}

var productAdjectives = []string{"Classic", "Premium", "Everyday", "Compact", "Deluxe", "Essential"}
var productNouns = []string{"Blend", "Kit", "Set", "Pack", "Edition", "Series"}

// Generator builds the dataset.
type Generator struct {
	opts   Options
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates a generator. The zero Seed is honored as-is, same seed
// same dataset.
func New(opts Options, logger *slog.Logger) (*Generator, error) {
	if opts.Products < 1 || opts.Customers < 1 || opts.Sales < 1 {
		return nil, fmt.Errorf("dataset sizes must be positive")
	}
	if !opts.EndDate.After(opts.StartDate) {
		return nil, fmt.Errorf("end date must be after start date")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		opts:   opts,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		logger: logger.With(slog.String("component", "generator")),
	}, nil
}

// Generate builds the product dimension and the sales ledger.
func (g *Generator) Generate() ([]domain.Product, []domain.SaleRecord) {
	products := g.generateProducts()
	sales := g.generateSales(products)

	g.logger.Info("dataset generated",
		slog.Int("products", len(products)),
		slog.Int("customers", g.opts.Customers),
		slog.Int("sales", len(sales)))
	return products, sales
}

func (g *Generator) generateProducts() []domain.Product {
	products := make([]domain.Product, 0, g.opts.Products)
	for i := 0; i < g.opts.Products; i++ {
		category := categories[g.rng.Intn(len(categories))]
		cost := 2 + g.rng.Float64()*48
		markup := 1.3 + g.rng.Float64()*1.2

		products = append(products, domain.Product{
			ProductID: fmt.Sprintf("P%04d", i+1),
			Name: fmt.Sprintf("%s %s %s",
				productAdjectives[g.rng.Intn(len(productAdjectives))],
				category,
				productNouns[g.rng.Intn(len(productNouns))]),
			Category:  category,
			UnitCost:  round2(cost),
			UnitPrice: round2(cost * markup),
		})
	}
	return products
}

func (g *Generator) generateSales(products []domain.Product) []domain.SaleRecord {
	sales := make([]domain.SaleRecord, 0, g.opts.Sales)
	for i := 0; i < g.opts.Sales; i++ {
		product := products[g.rng.Intn(len(products))]
		customer := fmt.Sprintf("C%05d", 1+g.skewedIntn(g.opts.Customers))
		date := g.sampleDate()

		quantity := int64(1 + g.rng.Intn(5))
		discount := float64(g.rng.Intn(5)) * 5 // 0..20 in steps of 5

		effectivePrice := product.UnitPrice * (1 - discount/100)
		netRevenue := round2(effectivePrice * float64(quantity))
		grossProfit := round2((effectivePrice - product.UnitCost) * float64(quantity))

		id, err := uuid.NewRandomFromReader(g.rng)
		if err != nil {
			// math/rand reads never fail
			panic(err)
		}

		sales = append(sales, domain.SaleRecord{
			TransactionID: id.String(),
			CustomerID:    customer,
			ProductID:     product.ProductID,
			SaleDate:      date,
			Quantity:      quantity,
			NetRevenue:    netRevenue,
			GrossProfit:   grossProfit,
			DiscountPct:   discount,
		})
	}
	return sales
}

// skewedIntn favors low indices so a minority of customers produce a
// majority of purchases.
func (g *Generator) skewedIntn(n int) int {
	v := int(g.rng.ExpFloat64() * float64(n) / 4)
	if v >= n {
		v = n - 1
	}
	return v
}

// sampleDate draws a day in the configured range, weighted toward
// weekends and December, by rejection sampling.
func (g *Generator) sampleDate() time.Time {
	days := int(g.opts.EndDate.Sub(g.opts.StartDate).Hours()/24) + 1
	for {
		day := g.opts.StartDate.AddDate(0, 0, g.rng.Intn(days))
		weight := 1.0
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weight += 0.4
		}
		if day.Month() == time.December {
			weight += 0.6
		}
		if g.rng.Float64()*2 < weight {
			return day
		}
	}
}

// WriteDataset generates and writes the two input CSVs into the data
// directory.
func (g *Generator) WriteDataset(paths *config.Paths) error {
	products, sales := g.Generate()

	writer := exporter.NewCSVWriter(paths)

	productRows := make([][]string, 0, len(products))
	for _, p := range products {
		productRows = append(productRows, []string{
			p.ProductID, p.Name, p.Category,
			fmt.Sprintf("%.2f", p.UnitCost),
			fmt.Sprintf("%.2f", p.UnitPrice),
		})
	}
	err := writer.WriteSimpleCSV(paths.DataPath(config.DimProductFile),
		[]string{"product_id", "name", "category", "unit_cost", "unit_price"}, productRows)
	if err != nil {
		return fmt.Errorf("write product dimension: %w", err)
	}

	stream, err := writer.CreateStreamWriter(paths.DataPath(config.FactSalesFile),
		[]string{"transaction_id", "customer_id", "product_id", "sale_date", "quantity", "net_revenue", "gross_profit", "discount_pct"})
	if err != nil {
		return fmt.Errorf("create sales ledger: %w", err)
	}
	for _, s := range sales {
		row := []string{
			s.TransactionID, s.CustomerID, s.ProductID,
			s.SaleDate.Format("2006-01-02"),
			fmt.Sprintf("%d", s.Quantity),
			fmt.Sprintf("%.2f", s.NetRevenue),
			fmt.Sprintf("%.2f", s.GrossProfit),
			fmt.Sprintf("%.2f", s.DiscountPct),
		}
		if err := stream.WriteRecord(row); err != nil {
			stream.Close()
			return fmt.Errorf("write sales ledger: %w", err)
		}
	}
	return stream.Close()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
