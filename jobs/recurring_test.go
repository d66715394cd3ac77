package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/clearbooks-io/clearbooks/internal/documents"
	"github.com/clearbooks-io/clearbooks/internal/ledger"
)

type memoryRecurringSource struct {
	due      []documents.RecurringInvoice
	created  []documents.Document
	advanced []time.Time
	nextID   int64
}

func (m *memoryRecurringSource) DueRecurring(ctx context.Context, companyID int64) ([]documents.RecurringInvoice, error) {
	return m.due, nil
}

func (m *memoryRecurringSource) Create(ctx context.Context, doc documents.Document) (documents.Document, error) {
	m.nextID++
	doc.ID = m.nextID
	m.created = append(m.created, doc)
	return doc, nil
}

func (m *memoryRecurringSource) AdvanceRecurring(ctx context.Context, ri documents.RecurringInvoice, generatedOn time.Time) (documents.RecurringInvoice, error) {
	m.advanced = append(m.advanced, generatedOn)
	return ri, nil
}

type stubApprover struct {
	approved []int64
	err      error
}

func (a *stubApprover) ApproveInvoice(ctx context.Context, companyID, documentID int64) (ledger.Transaction, error) {
	if a.err != nil {
		return ledger.Transaction{}, a.err
	}
	a.approved = append(a.approved, documentID)
	return ledger.Transaction{ID: documentID}, nil
}

type stubCompanies struct{ ids []int64 }

func (s stubCompanies) ListIDs(ctx context.Context) ([]int64, error) { return s.ids, nil }

func dueTemplate(id int64, nextDate time.Time) documents.RecurringInvoice {
	ri := documents.RecurringInvoice{
		Document: documents.Document{
			ID:           id,
			CompanyID:    1,
			Kind:         documents.KindRecurringInvoice,
			Number:       "REC-9",
			EntityID:     4,
			CurrencyCode: "USD",
			LineItems: []documents.LineItem{
				{AccountID: 40, Quantity: decimal.NewFromInt(1), UnitPrice: 5000},
			},
		},
		PaymentTermDays: 14,
		NextDate:        &nextDate,
	}
	ri.Schedule.OccurrencesCount = 2
	return ri
}

func TestGeneratorCreatesApprovesAndAdvances(t *testing.T) {
	ctx := context.Background()
	nextDate := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	source := &memoryRecurringSource{due: []documents.RecurringInvoice{dueTemplate(9, nextDate)}}
	approver := &stubApprover{}
	gen := NewGenerator(source, approver, stubCompanies{ids: []int64{1}}, slog.New(slog.DiscardHandler))

	created, err := gen.Run(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	require.Len(t, source.created, 1)
	doc := source.created[0]
	require.Equal(t, documents.KindInvoice, doc.Kind)
	require.Equal(t, "REC-9-3", doc.Number)
	require.Equal(t, nextDate, doc.Date)
	require.Equal(t, nextDate.AddDate(0, 0, 14), doc.DueDate)

	require.Equal(t, []int64{doc.ID}, approver.approved)
	require.Equal(t, []time.Time{nextDate}, source.advanced)
}

func TestGeneratorDoesNotAdvanceOnApprovalFailure(t *testing.T) {
	ctx := context.Background()
	nextDate := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	source := &memoryRecurringSource{due: []documents.RecurringInvoice{dueTemplate(9, nextDate)}}
	approver := &stubApprover{err: errors.New("chart not seeded")}
	gen := NewGenerator(source, approver, stubCompanies{}, slog.New(slog.DiscardHandler))

	created, err := gen.Run(ctx, 1)
	require.NoError(t, err) // per-template failures are logged, not fatal
	require.Zero(t, created)
	require.Empty(t, source.advanced)
}
