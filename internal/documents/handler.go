package documents

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Handler exposes invoices, bills, and estimates over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the documents HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{documentID}", h.get)
	r.Put("/{documentID}/line-items", h.updateLineItems)
	r.Get("/outstanding", h.listOutstanding)
}

type lineItemRequest struct {
	AccountID     int64   `json:"account_id" validate:"required"`
	OfferingID    *int64  `json:"offering_id"`
	Description   string  `json:"description"`
	Quantity      string  `json:"quantity" validate:"required"`
	UnitPrice     int64   `json:"unit_price" validate:"gte=0"`
	AdjustmentIDs []int64 `json:"adjustment_ids"`
}

type createDocumentRequest struct {
	CompanyID           int64             `json:"company_id" validate:"required"`
	Kind                string            `json:"kind" validate:"required,oneof=INVOICE BILL ESTIMATE RECURRING_INVOICE"`
	Number              string            `json:"number"`
	EntityID            int64             `json:"entity_id" validate:"required"`
	Date                string            `json:"date" validate:"required"`
	DueDate             string            `json:"due_date"`
	CurrencyCode        string            `json:"currency_code" validate:"required,len=3"`
	DiscountMethod      string            `json:"discount_method"`
	DiscountComputation string            `json:"discount_computation"`
	DiscountRate        int64             `json:"discount_rate"`
	LineItems           []lineItemRequest `json:"line_items" validate:"required,min=1,dive"`
}

func (r createDocumentRequest) toDocument() (Document, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return Document{}, err
	}
	dueDate := date
	if r.DueDate != "" {
		dueDate, err = time.Parse("2006-01-02", r.DueDate)
		if err != nil {
			return Document{}, err
		}
	}
	doc := Document{
		CompanyID:           r.CompanyID,
		Kind:                Kind(r.Kind),
		Number:              r.Number,
		EntityID:            r.EntityID,
		Date:                date,
		DueDate:             dueDate,
		CurrencyCode:        r.CurrencyCode,
		DiscountMethod:      DiscountMethod(r.DiscountMethod),
		DiscountComputation: Computation(r.DiscountComputation),
		DiscountRate:        r.DiscountRate,
	}
	for i, li := range r.LineItems {
		qty, err := decimal.NewFromString(li.Quantity)
		if err != nil {
			return Document{}, err
		}
		doc.LineItems = append(doc.LineItems, LineItem{
			AccountID:     li.AccountID,
			OfferingID:    li.OfferingID,
			Description:   li.Description,
			Quantity:      qty,
			UnitPrice:     li.UnitPrice,
			AdjustmentIDs: li.AdjustmentIDs,
			Position:      i,
		})
	}
	return doc, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	doc, err := req.toDocument()
	if err != nil {
		http.Error(w, "invalid date or quantity", http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), doc)
	if err != nil {
		h.respondServiceError(w, "create document", err)
		return
	}
	writeDocJSON(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
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
	doc, err := h.service.Get(r.Context(), companyID, documentID)
	if err != nil {
		h.respondServiceError(w, "get document", err)
		return
	}
	writeDocJSON(w, http.StatusOK, doc)
}

func (h *Handler) updateLineItems(w http.ResponseWriter, r *http.Request) {
	documentID, err := strconv.ParseInt(chi.URLParam(r, "documentID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid document id", http.StatusBadRequest)
		return
	}
	var req struct {
		CompanyID int64             `json:"company_id" validate:"required"`
		LineItems []lineItemRequest `json:"line_items" validate:"required,min=1,dive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	lines := make([]LineItem, 0, len(req.LineItems))
	for i, li := range req.LineItems {
		qty, err := decimal.NewFromString(li.Quantity)
		if err != nil {
			http.Error(w, "invalid quantity", http.StatusBadRequest)
			return
		}
		lines = append(lines, LineItem{
			AccountID:     li.AccountID,
			OfferingID:    li.OfferingID,
			Description:   li.Description,
			Quantity:      qty,
			UnitPrice:     li.UnitPrice,
			AdjustmentIDs: li.AdjustmentIDs,
			Position:      i,
		})
	}
	doc, err := h.service.UpdateLineItems(r.Context(), req.CompanyID, documentID, lines)
	if err != nil {
		h.respondServiceError(w, "update line items", err)
		return
	}
	writeDocJSON(w, http.StatusOK, doc)
}

func (h *Handler) listOutstanding(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	kind := Kind(r.URL.Query().Get("kind"))
	if kind != KindInvoice && kind != KindBill {
		http.Error(w, "kind must be INVOICE or BILL", http.StatusBadRequest)
		return
	}
	out, err := h.service.ListOutstanding(r.Context(), companyID, kind)
	if err != nil {
		h.respondServiceError(w, "list outstanding", err)
		return
	}
	writeDocJSON(w, http.StatusOK, out)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrAdjustmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNoLineItems), errors.Is(err, ErrNegativeQuantity),
		errors.Is(err, ErrCurrencyInvalid), errors.Is(err, ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error(op, slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeDocJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
