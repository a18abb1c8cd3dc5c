package analytics

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"retailbi/pkg/contracts/domain"
)

// Engine runs the full batch transformation: normalize once, then fan out
// the three independent reductions and join their results. The engine holds
// no mutable state between runs; re-running over the same input produces
// identical artifacts.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine logging through the given logger.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "analytics_engine"))}
}

// Result carries the artifacts of one engine run. Each reduction is
// independent, so a structural failure in one (recorded in the matching
// error field) leaves the others intact.
type Result struct {
	Sales   []domain.SaleRecord // normalized ledger, derived fields populated
	Monthly []domain.MonthlyAggregate
	RFM     []domain.CustomerRFM
	ABC     []domain.ProductABC

	RFMErr error
	ABCErr error

	Warnings []DegenerateQuantileWarning
}

// Run executes the transformation over an immutable input snapshot.
//
// Validation failures at the normalizer boundary abort the whole run: no
// artifact may be built from malformed input. Past that boundary the three
// reductions run concurrently, each owning its accumulator, and an
// empty-dataset failure in one artifact is reported on the Result rather
// than aborting its siblings.
func (e *Engine) Run(ctx context.Context, records []domain.SaleRecord, asOf time.Time) (*Result, error) {
	start := time.Now()
	e.logger.InfoContext(ctx, "starting analytics transformation",
		slog.Int("record_count", len(records)),
		slog.Time("as_of", asOf))

	normalized, err := Normalize(records)
	if err != nil {
		e.logger.ErrorContext(ctx, "normalization failed", slog.String("error", err.Error()))
		return nil, err
	}

	res := &Result{Sales: normalized}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res.Monthly = AggregateMonthly(normalized)
		return ctx.Err()
	})

	g.Go(func() error {
		rfm, warnings, err := ScoreRFM(normalized, asOf)
		res.RFM, res.Warnings, res.RFMErr = rfm, warnings, err
		return ctx.Err()
	})

	g.Go(func() error {
		abc, err := ClassifyABC(normalized)
		res.ABC, res.ABCErr = abc, err
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, w := range res.Warnings {
		e.logger.WarnContext(ctx, "quantile bins collapsed",
			slog.String("metric", w.Metric),
			slog.Int("requested", w.Requested),
			slog.Int("got", w.Got))
	}
	if res.RFMErr != nil {
		e.logger.ErrorContext(ctx, "rfm scoring failed", slog.String("error", res.RFMErr.Error()))
	}
	if res.ABCErr != nil {
		e.logger.ErrorContext(ctx, "abc classification failed", slog.String("error", res.ABCErr.Error()))
	}

	e.logger.InfoContext(ctx, "analytics transformation completed",
		slog.Int("monthly_rows", len(res.Monthly)),
		slog.Int("rfm_rows", len(res.RFM)),
		slog.Int("abc_rows", len(res.ABC)),
		slog.Duration("elapsed", time.Since(start)))

	return res, nil
}
