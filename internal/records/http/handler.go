// Package recordshttp serves read-only listings of the stored financial rows.
package recordshttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finboard/finboard/internal/platform/httpx"
	"github.com/finboard/finboard/internal/records"
)

const requestTimeout = 10 * time.Second

// Handler lists clients, payables, receivables and ledger entries.
type Handler struct {
	logger *slog.Logger
	reader records.Reader
}

// NewHandler constructs the record browser handler.
func NewHandler(logger *slog.Logger, reader records.Reader) *Handler {
	return &Handler{logger: logger, reader: reader}
}

// MountRoutes registers the listing endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/records/{table}", h.handleList)
}

type listing struct {
	Table string `json:"table"`
	Count int    `json:"count"`
	Rows  any    `json:"rows"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		rows  any
		count int
		err   error
	)
	switch table {
	case "clients":
		var out []records.Client
		out, err = h.reader.Clients(ctx)
		rows, count = out, len(out)
	case "payables":
		var out []records.PayableEntry
		out, err = h.reader.Payables(ctx)
		rows, count = out, len(out)
	case "receivables":
		var out []records.ReceivableEntry
		out, err = h.reader.Receivables(ctx)
		rows, count = out, len(out)
	case "ledger":
		var out []records.LedgerEntry
		out, err = h.reader.LedgerEntries(ctx)
		rows, count = out, len(out)
	default:
		httpx.RespondError(w, fmt.Errorf("%w: table %q", httpx.ErrNotFound, table))
		return
	}
	if err != nil {
		if h.logger != nil {
			h.logger.Error("list records", slog.String("table", table), slog.Any("error", err))
		}
		if errors.Is(err, records.ErrSchemaMissing) {
			err = fmt.Errorf("%w: %v", httpx.ErrUnavailable, err)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listing{Table: table, Count: count, Rows: rows})
}
