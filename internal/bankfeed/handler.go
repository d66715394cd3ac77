package bankfeed

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler exposes bank feed sync and suggestions over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the bank feed HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches bank feed routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sync", h.sync)
	r.Get("/suggestions", h.suggestions)
	r.Get("/lines/{lineID}", h.get)
}

type syncRequest struct {
	CompanyID     int64  `json:"company_id" validate:"required"`
	BankAccountID int64  `json:"bank_account_id" validate:"required"`
	Since         string `json:"since" validate:"required"`
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	since, err := time.Parse("2006-01-02", req.Since)
	if err != nil {
		http.Error(w, "invalid since", http.StatusBadRequest)
		return
	}
	imported, err := h.service.Sync(r.Context(), req.CompanyID, req.BankAccountID, since)
	if err != nil {
		if errors.Is(err, ErrFeedUnavailable) {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		h.logger.Error("bank feed sync", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeFeedJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	bankAccountID, err := strconv.ParseInt(r.URL.Query().Get("bank_account_id"), 10, 64)
	if err != nil {
		http.Error(w, "bank_account_id required", http.StatusBadRequest)
		return
	}
	out, err := h.service.Suggest(r.Context(), companyID, bankAccountID)
	if err != nil {
		h.logger.Error("bank feed suggestions", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeFeedJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid line id", http.StatusBadRequest)
		return
	}
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	line, err := h.service.Get(r.Context(), companyID, lineID)
	if err != nil {
		if errors.Is(err, ErrLineNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("get feed line", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeFeedJSON(w, http.StatusOK, line)
}

func writeFeedJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
