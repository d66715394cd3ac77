package posting

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clearbooks-io/clearbooks/internal/bankfeed"
	"github.com/clearbooks-io/clearbooks/internal/documents"
	"github.com/clearbooks-io/clearbooks/internal/ledger"
)

// Handler exposes posting operations over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the posting HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches posting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/invoices/{documentID}/approve", h.approveInvoice)
	r.Post("/bills/{documentID}/approve", h.approveBill)
	r.Post("/payments", h.recordPayment)
	r.Post("/payments/bulk", h.recordBulkPayment)
	r.Post("/bank-lines/{lineID}/categorize", h.categorize)
	r.Post("/bank-lines/{lineID}/transfer", h.transfer)
}

func (h *Handler) approveInvoice(w http.ResponseWriter, r *http.Request) {
	h.approve(w, r, h.service.ApproveInvoice)
}

func (h *Handler) approveBill(w http.ResponseWriter, r *http.Request) {
	h.approve(w, r, h.service.ApproveBill)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request, post func(ctx context.Context, companyID, documentID int64) (ledger.Transaction, error)) {
	documentID, err := strconv.ParseInt(chi.URLParam(r, "documentID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid document id", http.StatusBadRequest)
		return
	}
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	txn, err := post(r.Context(), companyID, documentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrDocumentNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrNotPostable), errors.Is(err, documents.ErrNoLineItems):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrNoRate):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			h.logger.Error("approve document", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

type paymentRequest struct {
	CompanyID     int64  `json:"company_id" validate:"required"`
	Kind          string `json:"kind" validate:"required,oneof=INVOICE BILL"`
	DocumentID    int64  `json:"document_id" validate:"required"`
	BankAccountID int64  `json:"bank_account_id" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	Refund        bool   `json:"refund"`
	PaidAt        string `json:"paid_at" validate:"required"`
	Method        string `json:"method"`
	Notes         string `json:"notes"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	paidAt, err := time.Parse("2006-01-02", req.PaidAt)
	if err != nil {
		http.Error(w, "invalid paid_at", http.StatusBadRequest)
		return
	}
	payment, err := h.service.RecordPayment(r.Context(), PaymentInput{
		CompanyID:     req.CompanyID,
		Kind:          documents.Kind(req.Kind),
		DocumentID:    req.DocumentID,
		BankAccountID: req.BankAccountID,
		Amount:        req.Amount,
		Refund:        req.Refund,
		PaidAt:        paidAt,
		Method:        req.Method,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrDocumentNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrNotPostable), errors.Is(err, ErrZeroPayment):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("record payment", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

type bulkPaymentRequest struct {
	CompanyID     int64   `json:"company_id" validate:"required"`
	Kind          string  `json:"kind" validate:"required,oneof=INVOICE BILL"`
	DocumentIDs   []int64 `json:"document_ids" validate:"required,min=1"`
	BankAccountID int64   `json:"bank_account_id" validate:"required"`
	Amount        int64   `json:"amount" validate:"required,gt=0"`
	PaidAt        string  `json:"paid_at" validate:"required"`
	Method        string  `json:"method"`
	Notes         string  `json:"notes"`
}

func (h *Handler) recordBulkPayment(w http.ResponseWriter, r *http.Request) {
	var req bulkPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	paidAt, err := time.Parse("2006-01-02", req.PaidAt)
	if err != nil {
		http.Error(w, "invalid paid_at", http.StatusBadRequest)
		return
	}
	payments, err := h.service.RecordBulkPayment(r.Context(), BulkPaymentInput{
		CompanyID:     req.CompanyID,
		Kind:          documents.Kind(req.Kind),
		DocumentIDs:   req.DocumentIDs,
		BankAccountID: req.BankAccountID,
		Amount:        req.Amount,
		PaidAt:        paidAt,
		Method:        req.Method,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrDocumentNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrNothingOutstanding), errors.Is(err, ErrZeroPayment):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("record bulk payment", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, payments)
}

type categorizeRequest struct {
	CompanyID int64 `json:"company_id" validate:"required"`
	AccountID int64 `json:"account_id" validate:"required"`
}

func (h *Handler) categorize(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid line id", http.StatusBadRequest)
		return
	}
	var req categorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	err = h.service.CategorizeBankTransaction(r.Context(), req.CompanyID, lineID, req.AccountID)
	switch {
	case err == nil, errors.Is(err, bankfeed.ErrAlreadyCategorized):
		// already-categorized repeats are fine: the entries exist
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, bankfeed.ErrLineNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("categorize bank line", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type transferRequest struct {
	CompanyID       int64 `json:"company_id" validate:"required"`
	DebitAccountID  int64 `json:"debit_account_id"`
	CreditAccountID int64 `json:"credit_account_id"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid line id", http.StatusBadRequest)
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	err = h.service.CategorizeBankTransfer(r.Context(), req.CompanyID, lineID, req.DebitAccountID, req.CreditAccountID)
	switch {
	case err == nil, errors.Is(err, bankfeed.ErrAlreadyCategorized):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, bankfeed.ErrLineNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("transfer bank line", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
