package documents

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clearbooks-io/clearbooks/internal/money"
	"github.com/clearbooks-io/clearbooks/internal/recurrence"
)

// Kind discriminates the document family.
type Kind string

const (
	KindInvoice          Kind = "INVOICE"
	KindBill             Kind = "BILL"
	KindEstimate         Kind = "ESTIMATE"
	KindRecurringInvoice Kind = "RECURRING_INVOICE"
)

// Status is the document lifecycle state.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusPartial  Status = "PARTIAL"
	StatusPaid     Status = "PAID"
	StatusOverpaid Status = "OVERPAID"
	StatusVoid     Status = "VOID"
)

// DiscountMethod selects per-line or whole-document discounting.
type DiscountMethod string

const (
	DiscountPerLineItem DiscountMethod = "PER_LINE_ITEM"
	DiscountPerDocument DiscountMethod = "PER_DOCUMENT"
)

// AdjustmentCategory separates tax from discount rules.
type AdjustmentCategory string

const (
	AdjustmentTax      AdjustmentCategory = "TAX"
	AdjustmentDiscount AdjustmentCategory = "DISCOUNT"
)

// AdjustmentType separates sales-side from purchase-side rules.
type AdjustmentType string

const (
	AdjustmentSales    AdjustmentType = "SALES"
	AdjustmentPurchase AdjustmentType = "PURCHASE"
)

// Computation is how an adjustment rate applies.
type Computation string

const (
	ComputationPercentage Computation = "PERCENTAGE"
	ComputationFixed      Computation = "FIXED"
)

// Adjustment is a tax or discount rule applied to line items.
type Adjustment struct {
	ID          int64
	CompanyID   int64
	Category    AdjustmentCategory
	Type        AdjustmentType
	Computation Computation
	// Rate is hundredths of a percent for percentage rules and cents
	// for fixed rules.
	Rate        int64
	Recoverable bool
	AccountID   *int64
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Amount computes the adjustment for a line subtotal in cents.
func (a Adjustment) Amount(subtotalCents int64) int64 {
	if a.Computation == ComputationFixed {
		return a.Rate
	}
	return money.Rate(a.Rate).ApplyTo(subtotalCents)
}

// LineItem is one row of a document. Subtotal and Total are derived
// and must satisfy Subtotal == round(Quantity*UnitPrice) and
// Total == Subtotal + TaxTotal - DiscountTotal at all times.
type LineItem struct {
	ID            int64
	DocumentKind  Kind
	DocumentID    int64
	OfferingID    *int64
	AccountID     int64 // revenue account for invoices, expense for bills
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     int64
	AdjustmentIDs []int64
	Subtotal      int64
	TaxTotal      int64
	DiscountTotal int64
	Total         int64
	Position      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Recalc recomputes the derived columns from their inputs.
func (li *LineItem) Recalc() {
	li.Subtotal = money.New(li.UnitPrice, "").MulQuantity(li.Quantity).Amount
	li.Total = li.Subtotal + li.TaxTotal - li.DiscountTotal
}

// Document is the shared header for the invoice/bill family.
type Document struct {
	ID             int64
	CompanyID      int64
	Kind           Kind
	Number         string
	EntityID       int64  // client for invoices, vendor for bills
	EntityName     string // read-only, joined from the entity record
	SourceID       uuid.UUID
	Date           time.Time
	DueDate        time.Time
	CurrencyCode   string
	DiscountMethod DiscountMethod
	// DiscountRate applies only with DiscountPerDocument: hundredths
	// of a percent for percentage, cents for fixed.
	DiscountComputation Computation
	DiscountRate        int64
	Status              Status
	ApprovedAt          *time.Time
	Subtotal            int64
	TaxTotal            int64
	DiscountTotal       int64
	Total               int64
	AmountPaid          int64
	AmountDue           int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
	LineItems           []LineItem
}

// Recalc recomputes every derived column on the document and its
// lines, including the per-document discount when configured.
func (d *Document) Recalc() {
	d.Subtotal, d.TaxTotal, d.DiscountTotal, d.Total = 0, 0, 0, 0
	for i := range d.LineItems {
		d.LineItems[i].Recalc()
		d.Subtotal += d.LineItems[i].Subtotal
		d.TaxTotal += d.LineItems[i].TaxTotal
	}
	if d.DiscountMethod == DiscountPerDocument {
		if d.DiscountComputation == ComputationFixed {
			d.DiscountTotal = d.DiscountRate
		} else {
			d.DiscountTotal = money.Rate(d.DiscountRate).ApplyTo(d.Subtotal)
		}
	} else {
		for i := range d.LineItems {
			d.DiscountTotal += d.LineItems[i].DiscountTotal
		}
	}
	d.Total = d.Subtotal + d.TaxTotal - d.DiscountTotal
	d.AmountDue = d.Total - d.AmountPaid
}

// StatusForPaid derives the payment status from cumulative paid cents.
func StatusForPaid(paid, total int64) Status {
	switch {
	case paid == 0:
		return StatusSent
	case paid < total:
		return StatusPartial
	case paid == total:
		return StatusPaid
	default:
		return StatusOverpaid
	}
}

// Payment is one recorded payment against a document.
type Payment struct {
	ID            int64
	CompanyID     int64
	DocumentKind  Kind
	DocumentID    int64
	SourceID      uuid.UUID
	PaidAt        time.Time
	Amount        int64
	Refund        bool
	Method        string
	BankAccountID int64
	Notes         string
	CreatedAt     time.Time
}

// RecurringInvoice is an invoice template plus its schedule cursors.
type RecurringInvoice struct {
	Document
	Schedule        recurrence.Schedule
	PaymentTermDays int
	NextDate        *time.Time
}
