package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Handler exposes the journal ledger over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the ledger HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/journals", h.post)
	r.Get("/transactions/{transactionID}", h.get)
	r.Get("/transactions", h.list)
}

type entryRequest struct {
	AccountID int64  `json:"account_id" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=DEBIT CREDIT"`
	Amount    int64  `json:"amount" validate:"gte=0"`
}

type postJournalRequest struct {
	CompanyID   int64          `json:"company_id" validate:"required"`
	PostedAt    string         `json:"posted_at" validate:"required"`
	Currency    string         `json:"currency" validate:"required,len=3"`
	Description string         `json:"description"`
	Entries     []entryRequest `json:"entries" validate:"required,min=2,dive"`
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var req postJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	postedAt, err := time.Parse("2006-01-02", req.PostedAt)
	if err != nil {
		http.Error(w, "invalid posted_at", http.StatusBadRequest)
		return
	}
	in := PostingInput{
		CompanyID:   req.CompanyID,
		Type:        TransactionJournal,
		PostedAt:    postedAt,
		Currency:    req.Currency,
		Description: req.Description,
		SourceKind:  SourceNone,
		SourceID:    uuid.New(),
	}
	for _, e := range req.Entries {
		in.Entries = append(in.Entries, EntryInput{
			AccountID: e.AccountID,
			Type:      EntryType(e.Type),
			Amount:    e.Amount,
		})
	}
	txn, err := h.service.Post(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnbalanced), errors.Is(err, ErrTooFewEntries),
			errors.Is(err, ErrNegativeAmount), errors.Is(err, ErrBothSides),
			errors.Is(err, ErrMissingAccount):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			h.logger.Error("post journal", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	transactionID, err := strconv.ParseInt(chi.URLParam(r, "transactionID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	txn, err := h.service.Get(r.Context(), companyID, transactionID)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("get transaction", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid to", http.StatusBadRequest)
		return
	}
	out, err := h.service.ListPostedBetween(r.Context(), companyID, from, to)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
