package reports

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clearbooks-io/clearbooks/internal/balances"
)

// Handler exposes the report builders over JSON.
type Handler struct {
	service *Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, now: time.Now}
}

// MountRoutes attaches report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.trialBalance)
	r.Get("/balance-sheet", h.balanceSheet)
	r.Get("/income-statement", h.incomeStatement)
	r.Get("/cash-flow", h.cashFlow)
	r.Get("/aging/receivables", h.agingReceivables)
	r.Get("/aging/payables", h.agingPayables)
	r.Get("/clients", h.clients)
	r.Get("/vendors", h.vendors)
}

func (h *Handler) companyID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	return id, err == nil && id > 0
}

// dateParam parses a yyyy-mm-dd query value, defaulting when absent.
func dateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (h *Handler) window(r *http.Request) (time.Time, time.Time, error) {
	end, err := dateParam(r, "end", h.now().UTC().Truncate(24*time.Hour))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := dateParam(r, "start", balances.FiscalPeriodStart(end, h.service.FiscalYearStart))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (h *Handler) respond(w http.ResponseWriter, name string, out any, err error) {
	if err != nil {
		h.logger.Error("build report", slog.String("report", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(r)
	if !ok {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	asOf, err := dateParam(r, "as_of", h.now().UTC())
	if err != nil {
		http.Error(w, "invalid as_of", http.StatusBadRequest)
		return
	}
	out, err := h.service.TrialBalance(r.Context(), companyID, asOf)
	h.respond(w, "trial_balance", out, err)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(r)
	if !ok {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	asOf, err := dateParam(r, "as_of", h.now().UTC())
	if err != nil {
		http.Error(w, "invalid as_of", http.StatusBadRequest)
		return
	}
	out, err := h.service.BalanceSheet(r.Context(), companyID, asOf)
	h.respond(w, "balance_sheet", out, err)
}

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(r)
	if !ok {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	start, end, err := h.window(r)
	if err != nil {
		http.Error(w, "invalid date range", http.StatusBadRequest)
		return
	}
	out, err := h.service.IncomeStatement(r.Context(), companyID, start, end)
	h.respond(w, "income_statement", out, err)
}

func (h *Handler) cashFlow(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(r)
	if !ok {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	start, end, err := h.window(r)
	if err != nil {
		http.Error(w, "invalid date range", http.StatusBadRequest)
		return
	}
	out, err := h.service.CashFlow(r.Context(), companyID, start, end)
	h.respond(w, "cash_flow", out, err)
}

func (h *Handler) agingReceivables(w http.ResponseWriter, r *http.Request) {
	h.aging(w, r, "ar")
}

func (h *Handler) agingPayables(w http.ResponseWriter, r *http.Request) {
	h.aging(w, r, "ap")
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request, side string) {
	companyID, ok := h.companyID(r)
	if !ok {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	asOf, err := dateParam(r, "as_of", h.now().UTC())
	if err != nil {
		http.Error(w, "invalid as_of", http.StatusBadRequest)
		return
	}
	periods, _ := strconv.Atoi(r.URL.Query().Get("periods"))
	perPeriod, _ := strconv.Atoi(r.URL.Query().Get("days_per_period"))

	var out Aging
	if side == "ar" {
		out, err = h.service.AgingReceivables(r.Context(), companyID, asOf, periods, perPeriod)
	} else {
		out, err = h.service.AgingPayables(r.Context(), companyID, asOf, periods, perPeriod)
	}
	h.respond(w, side+"_aging", out, err)
}

func (h *Handler) clients(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(r)
	if !ok {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	out, err := h.service.ClientSummaries(r.Context(), companyID, h.now().UTC())
	h.respond(w, "clients", out, err)
}

func (h *Handler) vendors(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(r)
	if !ok {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	out, err := h.service.VendorSummaries(r.Context(), companyID, h.now().UTC())
	h.respond(w, "vendors", out, err)
}
