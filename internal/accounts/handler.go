package accounts

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler exposes the account directory over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the accounts HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{accountID}/parent", h.setParent)
	r.Delete("/{accountID}", h.remove)
}

type createAccountRequest struct {
	CompanyID    int64  `json:"company_id" validate:"required"`
	SubtypeID    int64  `json:"subtype_id" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Code         string `json:"code" validate:"required"`
	Name         string `json:"name" validate:"required"`
	CurrencyCode string `json:"currency_code" validate:"required,len=3"`
	ParentID     *int64 `json:"parent_id"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	out, err := h.service.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	account, err := h.service.Create(r.Context(), Account{
		CompanyID:    req.CompanyID,
		SubtypeID:    req.SubtypeID,
		Category:     Category(req.Category),
		Code:         req.Code,
		Name:         req.Name,
		CurrencyCode: req.CurrencyCode,
		ParentID:     req.ParentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrParentCategoryMismatch):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("create account", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) setParent(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}
	var req struct {
		CompanyID int64  `json:"company_id"`
		ParentID  *int64 `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.service.SetParent(r.Context(), req.CompanyID, accountID, req.ParentID); err != nil {
		switch {
		case errors.Is(err, ErrParentCycle), errors.Is(err, ErrParentCategoryMismatch):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrAccountNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error("set parent", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), companyID, accountID); err != nil {
		switch {
		case errors.Is(err, ErrAccountInUse):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrAccountNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error("delete account", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
