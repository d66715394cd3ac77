package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clearbooks-io/clearbooks/internal/documents"
	"github.com/clearbooks-io/clearbooks/internal/ledger"
)

// RecurringSource lists due recurring invoices and advances their
// cursors, satisfied by the documents service.
type RecurringSource interface {
	DueRecurring(ctx context.Context, companyID int64) ([]documents.RecurringInvoice, error)
	Create(ctx context.Context, doc documents.Document) (documents.Document, error)
	AdvanceRecurring(ctx context.Context, ri documents.RecurringInvoice, generatedOn time.Time) (documents.RecurringInvoice, error)
}

// Approver posts generated invoices, satisfied by the posting engine.
type Approver interface {
	ApproveInvoice(ctx context.Context, companyID, documentID int64) (ledger.Transaction, error)
}

// CompanyLister enumerates tenants for all-company sweeps.
type CompanyLister interface {
	ListIDs(ctx context.Context) ([]int64, error)
}

// Generator materialises invoices from due recurring templates. Each
// occurrence is created, approved, and cursor-advanced; a failure on
// one template does not block the rest of the run.
type Generator struct {
	source    RecurringSource
	approver  Approver
	companies CompanyLister
	logger    *slog.Logger
	now       func() time.Time
}

// NewGenerator builds the recurring invoice generator.
func NewGenerator(source RecurringSource, approver Approver, companies CompanyLister, logger *slog.Logger) *Generator {
	return &Generator{
		source:    source,
		approver:  approver,
		companies: companies,
		logger:    logger,
		now:       time.Now,
	}
}

// WithNow overrides the clock, used by tests.
func (g *Generator) WithNow(now func() time.Time) {
	if now != nil {
		g.now = now
	}
}

// Run generates invoices for one company, or for every company when
// companyID is zero. Returns the number of invoices created.
func (g *Generator) Run(ctx context.Context, companyID int64) (int, error) {
	ids := []int64{companyID}
	if companyID == 0 {
		var err error
		ids, err = g.companies.ListIDs(ctx)
		if err != nil {
			return 0, err
		}
	}
	created := 0
	for _, id := range ids {
		n, err := g.runCompany(ctx, id)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

func (g *Generator) runCompany(ctx context.Context, companyID int64) (int, error) {
	due, err := g.source.DueRecurring(ctx, companyID)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, ri := range due {
		if err := g.generateOne(ctx, ri); err != nil {
			g.logger.Error("recurring generation failed",
				slog.Int64("company_id", companyID),
				slog.Int64("template_id", ri.ID),
				slog.Any("error", err))
			continue
		}
		created++
	}
	return created, nil
}

// generateOne creates one invoice from a template. The cursor only
// advances after the invoice exists and is posted, so a crash
// mid-generation repeats the occurrence instead of skipping it; the
// re-run replaces the earlier posting by source id.
func (g *Generator) generateOne(ctx context.Context, ri documents.RecurringInvoice) error {
	issuedOn := *ri.NextDate
	doc := documents.Document{
		CompanyID:      ri.CompanyID,
		Kind:           documents.KindInvoice,
		Number:         fmt.Sprintf("%s-%d", ri.Number, ri.Schedule.OccurrencesCount+1),
		EntityID:       ri.EntityID,
		Date:           issuedOn,
		DueDate:        issuedOn.AddDate(0, 0, ri.PaymentTermDays),
		CurrencyCode:   ri.CurrencyCode,
		DiscountMethod: ri.DiscountMethod,
	}
	for _, li := range ri.LineItems {
		doc.LineItems = append(doc.LineItems, documents.LineItem{
			OfferingID:    li.OfferingID,
			AccountID:     li.AccountID,
			Description:   li.Description,
			Quantity:      li.Quantity,
			UnitPrice:     li.UnitPrice,
			AdjustmentIDs: li.AdjustmentIDs,
			Position:      li.Position,
		})
	}
	createdDoc, err := g.source.Create(ctx, doc)
	if err != nil {
		return err
	}
	if _, err := g.approver.ApproveInvoice(ctx, ri.CompanyID, createdDoc.ID); err != nil {
		return err
	}
	_, err = g.source.AdvanceRecurring(ctx, ri, issuedOn)
	return err
}

// HandleRecurringGenerate adapts the generator to an asynq handler.
func HandleRecurringGenerate(g *Generator) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RecurringGeneratePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		created, err := g.Run(ctx, payload.CompanyID)
		if err != nil {
			return err
		}
		g.logger.Info("recurring invoices generated",
			slog.Int64("company_id", payload.CompanyID),
			slog.Int("created", created))
		return nil
	}
}
