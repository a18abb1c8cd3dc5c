// Package http contains the read-only query API over the produced
// analytics artifacts.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailbi/internal/errors"
	"retailbi/internal/services"
	"retailbi/pkg/contracts/domain"
)

// AnalyticsServiceInterface is the service contract consumed by the
// handler, kept as an interface for handler tests.
type AnalyticsServiceInterface interface {
	Health(ctx context.Context) *services.HealthStatus
	KPIs(ctx context.Context, from, to time.Time) (*services.KPIReport, error)
	MonthlySales(ctx context.Context, year, limit int) ([]domain.MonthlyAggregate, error)
	DailySales(ctx context.Context, from, to time.Time) ([]services.DailySale, error)
	TopProducts(ctx context.Context, limit int, category string) ([]services.TopProduct, error)
	CustomerSegments(ctx context.Context) ([]services.SegmentStats, error)
	Categories(ctx context.Context) ([]string, error)
}

// AnalyticsHandler serves the query endpoints.
type AnalyticsHandler struct {
	service AnalyticsServiceInterface
	logger  *slog.Logger
}

// NewAnalyticsHandler creates the handler.
func NewAnalyticsHandler(service AnalyticsServiceInterface, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With(slog.String("component", "analytics_handler")),
	}
}

// Routes returns the API routes.
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", h.GetHealth)
	r.Get("/kpis", h.GetKPIs)
	r.Get("/sales/monthly", h.GetMonthlySales)
	r.Get("/sales/daily", h.GetDailySales)
	r.Get("/products/top", h.GetTopProducts)
	r.Get("/customers/segments", h.GetCustomerSegments)
	r.Get("/categories", h.GetCategories)

	return r
}

// GetHealth reports artifact availability.
func (h *AnalyticsHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Health(r.Context()))
}

// GetKPIs serves the headline totals, optionally bounded by from/to.
func (h *AnalyticsHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	report, err := h.service.KPIs(r.Context(), from, to)
	if err != nil {
		h.renderServiceError(w, r, err, "kpis")
		return
	}
	render.JSON(w, r, report)
}

// GetMonthlySales serves the monthly rollup.
func (h *AnalyticsHandler) GetMonthlySales(w http.ResponseWriter, r *http.Request) {
	year, ok := h.intParam(w, r, "year", 0)
	if !ok {
		return
	}
	limit, ok := h.intParam(w, r, "limit", 0)
	if !ok {
		return
	}

	rows, err := h.service.MonthlySales(r.Context(), year, limit)
	if err != nil {
		h.renderServiceError(w, r, err, "monthly sales")
		return
	}
	render.JSON(w, r, rows)
}

// GetDailySales serves per-day aggregates of the ledger.
func (h *AnalyticsHandler) GetDailySales(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	rows, err := h.service.DailySales(r.Context(), from, to)
	if err != nil {
		h.renderServiceError(w, r, err, "daily sales")
		return
	}
	render.JSON(w, r, rows)
}

// GetTopProducts serves the revenue ranking joined with the dimension.
func (h *AnalyticsHandler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.intParam(w, r, "limit", 0)
	if !ok {
		return
	}
	category := r.URL.Query().Get("category")

	rows, err := h.service.TopProducts(r.Context(), limit, category)
	if err != nil {
		h.renderServiceError(w, r, err, "top products")
		return
	}
	render.JSON(w, r, rows)
}

// GetCustomerSegments serves the per-segment summary.
func (h *AnalyticsHandler) GetCustomerSegments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.CustomerSegments(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err, "customer segments")
		return
	}
	render.JSON(w, r, rows)
}

// GetCategories serves the distinct product categories.
func (h *AnalyticsHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err, "categories")
		return
	}
	render.JSON(w, r, categories)
}

// dateRange parses the optional from/to query parameters.
func (h *AnalyticsHandler) dateRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	query := r.URL.Query()

	if raw := query.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.renderError(w, r, apierrors.InvalidParameterError("from", err))
			return from, to, false
		}
		from = t
	}
	if raw := query.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.renderError(w, r, apierrors.InvalidParameterError("to", err))
			return from, to, false
		}
		to = t
	}
	return from, to, true
}

// intParam parses an optional non-negative integer query parameter.
func (h *AnalyticsHandler) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		h.renderError(w, r, apierrors.InvalidParameterError(name, errors.New("must be a non-negative integer")))
		return 0, false
	}
	return v, true
}

func (h *AnalyticsHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	if errors.Is(err, services.ErrNoDataFound) {
		h.renderError(w, r, apierrors.NotFoundError(resource))
		return
	}
	h.logger.Error("query failed",
		slog.String("resource", resource),
		slog.String("error", err.Error()))
	h.renderError(w, r, apierrors.ErrInternalServer)
}

func (h *AnalyticsHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	if err := render.Render(w, r, apiErr); err != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}
