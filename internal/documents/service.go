package documents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clearbooks-io/clearbooks/internal/money"
)

// Service manages document headers and line items. Ledger effects of
// documents (approval, payments) go through the posting engine.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the documents service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates a new document, resolves its adjustments, computes
// all derived totals, and stores it as a draft.
func (s *Service) Create(ctx context.Context, doc Document) (Document, error) {
	if len(doc.LineItems) == 0 {
		return Document{}, ErrNoLineItems
	}
	if !money.ValidCurrency(doc.CurrencyCode) {
		return Document{}, ErrCurrencyInvalid
	}
	if doc.SourceID == uuid.Nil {
		doc.SourceID = uuid.New()
	}
	if doc.DiscountMethod == "" {
		doc.DiscountMethod = DiscountPerLineItem
	}
	doc.Status = StatusDraft
	if err := s.applyAdjustments(ctx, &doc); err != nil {
		return Document{}, err
	}
	doc.Recalc()
	return s.repo.Insert(ctx, doc)
}

// UpdateLineItems replaces a document's lines and recomputes totals.
// The caller must re-post through the posting engine afterwards when
// the document was already approved.
func (s *Service) UpdateLineItems(ctx context.Context, companyID, documentID int64, lines []LineItem) (Document, error) {
	doc, err := s.repo.Get(ctx, companyID, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.Status == StatusVoid {
		return Document{}, ErrInvalidStatus
	}
	if len(lines) == 0 {
		return Document{}, ErrNoLineItems
	}
	doc.LineItems = lines
	if err := s.applyAdjustments(ctx, &doc); err != nil {
		return Document{}, err
	}
	doc.Recalc()
	return s.repo.ReplaceLineItems(ctx, doc)
}

// applyAdjustments resolves each line's adjustment rules and fills the
// per-line tax and discount totals. An unknown adjustment id fails the
// whole operation; lines are never silently skipped.
func (s *Service) applyAdjustments(ctx context.Context, doc *Document) error {
	for i := range doc.LineItems {
		li := &doc.LineItems[i]
		if li.Quantity.Sign() < 0 {
			return ErrNegativeQuantity
		}
		li.Recalc()
		li.TaxTotal, li.DiscountTotal = 0, 0
		for _, adjID := range li.AdjustmentIDs {
			adj, err := s.repo.GetAdjustment(ctx, doc.CompanyID, adjID)
			if err != nil {
				return err
			}
			amount := adj.Amount(li.Subtotal)
			switch adj.Category {
			case AdjustmentTax:
				li.TaxTotal += amount
			case AdjustmentDiscount:
				if doc.DiscountMethod == DiscountPerLineItem {
					li.DiscountTotal += amount
				}
			}
		}
		li.Recalc()
	}
	return nil
}

// Get loads a document with its lines.
func (s *Service) Get(ctx context.Context, companyID, documentID int64) (Document, error) {
	return s.repo.Get(ctx, companyID, documentID)
}

// ListOutstanding returns unpaid sent documents, oldest due first.
func (s *Service) ListOutstanding(ctx context.Context, companyID int64, kind Kind) ([]Document, error) {
	return s.repo.ListOutstanding(ctx, companyID, kind)
}

// AdvanceRecurring moves a recurring invoice's cursor past a generated
// occurrence, keeping nextDate strictly after lastDate and inside the
// configured end condition.
func (s *Service) AdvanceRecurring(ctx context.Context, ri RecurringInvoice, generatedOn time.Time) (RecurringInvoice, error) {
	ri.Schedule.LastDate = generatedOn
	ri.Schedule.OccurrencesCount++
	if next, ok := ri.Schedule.NextDate(generatedOn); ok {
		ri.NextDate = &next
	} else {
		ri.NextDate = nil
	}
	if err := s.repo.UpdateRecurringCursor(ctx, ri.CompanyID, ri.ID, ri); err != nil {
		return RecurringInvoice{}, err
	}
	return ri, nil
}

// DueRecurring lists recurring invoices whose next date has arrived.
func (s *Service) DueRecurring(ctx context.Context, companyID int64) ([]RecurringInvoice, error) {
	return s.repo.ListRecurringDue(ctx, companyID)
}
