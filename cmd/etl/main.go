// Command etl runs the batch transformation: it loads the raw input
// CSVs, produces the derived analytics artifacts and the model
// collaborator outputs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"retailbi/internal/config"
	"retailbi/internal/etl"
	"retailbi/internal/infrastructure"
)

func main() {
	var (
		configFile = flag.String("config", "config.yaml", "path to the optional YAML config file")
		asOf       = flag.String("as-of", "", "recency reference date (YYYY-MM-DD), default: day after the latest sale")
		excel      = flag.Bool("excel", false, "also write the artifacts as a single Excel workbook")
	)
	flag.Parse()

	if err := run(*configFile, *asOf, *excel); err != nil {
		fmt.Fprintf(os.Stderr, "etl: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, asOf string, excel bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if asOf != "" {
		cfg.Analytics.AsOf = asOf
	}
	if excel {
		cfg.Analytics.ExcelExport = true
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := etl.NewPipeline(cfg, paths, logger)
	logger.Info("starting batch run", slog.String("plan", pipeline.Describe()))

	return pipeline.Run(ctx)
}
