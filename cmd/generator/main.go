// Command generator writes a synthetic retail dataset (product
// dimension plus sales ledger) into the configured data directory.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"retailbi/internal/config"
	"retailbi/internal/generator"
	"retailbi/internal/infrastructure"
)

func main() {
	var (
		configFile = flag.String("config", "config.yaml", "path to the optional YAML config file")
		products   = flag.Int("products", 0, "number of products (default from generator)")
		customers  = flag.Int("customers", 0, "number of customers")
		sales      = flag.Int("sales", 0, "number of sales")
		start      = flag.String("start", "", "first sale date (YYYY-MM-DD)")
		end        = flag.String("end", "", "last sale date (YYYY-MM-DD)")
		seed       = flag.Int64("seed", 0, "random seed (0 keeps the default)")
	)
	flag.Parse()

	if err := run(*configFile, *products, *customers, *sales, *start, *end, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "generator: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string, products, customers, sales int, start, end string, seed int64) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	opts := generator.DefaultOptions()
	if products > 0 {
		opts.Products = products
	}
	if customers > 0 {
		opts.Customers = customers
	}
	if sales > 0 {
		opts.Sales = sales
	}
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return fmt.Errorf("parse start date: %w", err)
		}
		opts.StartDate = t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return fmt.Errorf("parse end date: %w", err)
		}
		opts.EndDate = t
	}
	if seed != 0 {
		opts.Seed = seed
	}

	g, err := generator.New(opts, logger)
	if err != nil {
		return err
	}

	if err := g.WriteDataset(paths); err != nil {
		return err
	}

	logger.Info("dataset written",
		slog.String("ledger", paths.DataPath(config.FactSalesFile)),
		slog.String("dimension", paths.DataPath(config.DimProductFile)))
	return nil
}
