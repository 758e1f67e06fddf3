package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/karlmoz79/busqueda-laptop/internal/history"
	"github.com/karlmoz79/busqueda-laptop/internal/models"
)

// Searcher runs a full scrape for a query and returns the surviving records.
type Searcher interface {
	Scrape(ctx context.Context, query string) []models.ProductRecord
}

// Alerter evaluates records against the alert band and dispatches the
// consolidated notification, returning the number of qualifying records.
type Alerter interface {
	SendConsolidatedAlert(ctx context.Context, records []models.ProductRecord, threshold, minPrice float64) (int, error)
}

// HistoryReader exposes stored price snapshots. Nil when no store is
// configured.
type HistoryReader interface {
	RecentByQuery(ctx context.Context, query string, limit int) ([]history.Snapshot, error)
	LowestPrice(ctx context.Context, query string) (*history.Snapshot, error)
}

// Pacer spaces out scrape-triggering requests.
type Pacer interface {
	Wait(ctx context.Context) error
}

type Options struct {
	DefaultQuery   string
	PriceThreshold float64
	MinPrice       float64
}

type Handlers struct {
	searcher Searcher
	alerter  Alerter
	hist     HistoryReader
	pacer    Pacer
	opts     Options
	logger   *slog.Logger
}

func NewHandlers(searcher Searcher, alerter Alerter, hist HistoryReader, pacer Pacer, opts Options, logger *slog.Logger) *Handlers {
	return &Handlers{
		searcher: searcher,
		alerter:  alerter,
		hist:     hist,
		pacer:    pacer,
		opts:     opts,
		logger:   logger.With("component", "api"),
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Status     string                 `json:"status"`
	Count      int                    `json:"count"`
	PriceMin   *float64               `json:"price_min"`
	PriceMax   *float64               `json:"price_max"`
	AlertsSent int                    `json:"alerts_sent"`
	Products   []models.ProductRecord `json:"products"`
}

// Search triggers a scrape and returns the consolidated results. The request
// body is optional; an empty or missing query falls back to the default.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if r.Body != nil {
		// Malformed or empty bodies fall back to the default query.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	query := req.Query
	if query == "" {
		query = h.opts.DefaultQuery
	}

	if h.pacer != nil {
		if err := h.pacer.Wait(r.Context()); err != nil {
			h.respondError(w, http.StatusServiceUnavailable, "request cancelled while waiting for scrape slot")
			return
		}
	}

	h.logger.Info("search requested", "query", query)
	records := h.searcher.Scrape(r.Context(), query)
	if records == nil {
		records = []models.ProductRecord{}
	}

	alertsSent := 0
	if h.alerter != nil && len(records) > 0 {
		sent, err := h.alerter.SendConsolidatedAlert(r.Context(), records, h.opts.PriceThreshold, h.opts.MinPrice)
		if err != nil {
			h.logger.Error("failed to send alerts", "error", err)
		}
		alertsSent = sent
	}

	priceMin, priceMax := priceBounds(records)

	h.respondJSON(w, http.StatusOK, searchResponse{
		Status:     "ok",
		Count:      len(records),
		PriceMin:   priceMin,
		PriceMax:   priceMax,
		AlertsSent: alertsSent,
		Products:   records,
	})
}

// History returns stored snapshots for a query, newest first.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	if h.hist == nil {
		h.respondError(w, http.StatusNotImplemented, "price history is not configured")
		return
	}

	query := chi.URLParam(r, "query")
	if query == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	snapshots, err := h.hist.RecentByQuery(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to load history", "query", query, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	lowest, err := h.hist.LowestPrice(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to load lowest price", "query", query, "error", err)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"query":     query,
		"count":     len(snapshots),
		"lowest":    lowest,
		"snapshots": snapshots,
	})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// priceBounds returns the lowest and highest extracted prices, nil when no
// record carries a price.
func priceBounds(records []models.ProductRecord) (*float64, *float64) {
	var lo, hi *float64
	for _, rec := range records {
		if rec.PriceUSD == nil {
			continue
		}
		p := *rec.PriceUSD
		if lo == nil || p < *lo {
			v := p
			lo = &v
		}
		if hi == nil || p > *hi {
			v := p
			hi = &v
		}
	}
	return lo, hi
}
