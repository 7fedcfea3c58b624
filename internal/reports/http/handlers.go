package reportshttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/finboard/finboard/internal/platform/httpx"
	"github.com/finboard/finboard/internal/records"
	"github.com/finboard/finboard/internal/reports"
	"github.com/finboard/finboard/internal/reports/export"
)

const defaultRequestTimeout = 10 * time.Second

// ReportService defines the report contract used by the handler.
type ReportService interface {
	CashFlow(ctx context.Context) (reports.CashFlowReport, error)
	PayablesDistribution(ctx context.Context) (reports.PayablesReport, error)
	TopClients(ctx context.Context) (reports.TopClientsResult, error)
	Dashboard(ctx context.Context) reports.DashboardSnapshot
	Build(ctx context.Context, kind reports.Kind) (any, error)
}

// Handler serves the report endpoints.
type Handler struct {
	logger   *slog.Logger
	service  ReportService
	validate *validator.Validate
	csvPool  sync.Pool
	timeout  time.Duration
}

// NewHandler constructs the report HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	h := &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		timeout:  defaultRequestTimeout,
	}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithTimeout overrides the per-request data fetch timeout.
func (h *Handler) WithTimeout(d time.Duration) *Handler {
	if d > 0 {
		h.timeout = d
	}
	return h
}

type exportQuery struct {
	Report string `validate:"required,oneof=cash-flow payables-distribution payables top-clients"`
}

type dashboardSection struct {
	Report any    `json:"report,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (h *Handler) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	report, err := h.service.CashFlow(ctx)
	if err != nil {
		h.respondError(w, "cash flow", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handlePayables(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	report, err := h.service.PayablesDistribution(ctx)
	if err != nil {
		h.respondError(w, "payables distribution", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleTopClients(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	result, err := h.service.TopClients(ctx)
	if err != nil {
		h.respondError(w, "top clients", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	snapshot := h.service.Dashboard(ctx)

	body := make(map[reports.Kind]dashboardSection, 3)
	for _, kind := range reports.Kinds() {
		if err, failed := snapshot.Errors[kind]; failed {
			body[kind] = dashboardSection{Error: err.Error()}
		}
	}
	if snapshot.CashFlow != nil {
		body[reports.KindCashFlow] = dashboardSection{Report: snapshot.CashFlow}
	}
	if snapshot.Payables != nil {
		body[reports.KindPayablesDistribution] = dashboardSection{Report: snapshot.Payables}
	}
	if snapshot.TopClients != nil {
		body[reports.KindTopClients] = dashboardSection{Report: snapshot.TopClients}
	}
	httpx.JSON(w, http.StatusOK, body)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	query := exportQuery{Report: r.URL.Query().Get("report")}
	if err := h.validate.Struct(query); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "report must be one of cash-flow, payables-distribution, top-clients")
		return
	}
	kind, err := reports.ParseKind(query.Report)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	report, err := h.service.Build(ctx, kind)
	if err != nil {
		h.respondError(w, "export "+string(kind), err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()
	if err := export.Write(buf, report); err != nil {
		h.respondError(w, "write csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", kind))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	var malformed *reports.MalformedAmountError
	switch {
	case errors.As(err, &malformed):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUnprocessable, malformed.Error()))
	case errors.Is(err, records.ErrMalformedRow):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnprocessable, err))
	case errors.Is(err, records.ErrSchemaMissing):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnavailable, err))
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
