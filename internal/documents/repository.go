package documents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository encapsulates DB operations for documents.
type Repository interface {
	Get(ctx context.Context, companyID, documentID int64) (Document, error)
	ListByKind(ctx context.Context, companyID int64, kind Kind) ([]Document, error)
	ListOutstanding(ctx context.Context, companyID int64, kind Kind) ([]Document, error)
	GetAdjustment(ctx context.Context, companyID, adjustmentID int64) (Adjustment, error)
	Insert(ctx context.Context, doc Document) (Document, error)
	ReplaceLineItems(ctx context.Context, doc Document) (Document, error)
	ListPayments(ctx context.Context, companyID int64, kind Kind, documentID int64) ([]Payment, error)
	ListRecurringDue(ctx context.Context, companyID int64) ([]RecurringInvoice, error)
	UpdateRecurringCursor(ctx context.Context, companyID, documentID int64, ri RecurringInvoice) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a pgx-backed documents repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const documentColumns = `id, company_id, kind, number, entity_id, source_id, date, due_date, currency_code,
discount_method, discount_computation, discount_rate, status, approved_at,
subtotal, tax_total, discount_total, total, amount_paid, amount_due, created_at, updated_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.CompanyID, &d.Kind, &d.Number, &d.EntityID, &d.SourceID, &d.Date, &d.DueDate,
		&d.CurrencyCode, &d.DiscountMethod, &d.DiscountComputation, &d.DiscountRate, &d.Status, &d.ApprovedAt,
		&d.Subtotal, &d.TaxTotal, &d.DiscountTotal, &d.Total, &d.AmountPaid, &d.AmountDue, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *repository) Get(ctx context.Context, companyID, documentID int64) (Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE company_id=$1 AND id=$2`, companyID, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, err
	}
	lines, err := r.listLineItems(ctx, d.Kind, d.ID)
	if err != nil {
		return Document{}, err
	}
	d.LineItems = lines
	return d, nil
}

func (r *repository) listLineItems(ctx context.Context, kind Kind, documentID int64) ([]LineItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, document_kind, document_id, offering_id, account_id, description, quantity, unit_price,
adjustment_ids, subtotal, tax_total, discount_total, total, position, created_at, updated_at
FROM document_line_items WHERE document_kind=$1 AND document_id=$2 ORDER BY position, id`, kind, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LineItem
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(&li.ID, &li.DocumentKind, &li.DocumentID, &li.OfferingID, &li.AccountID,
			&li.Description, &li.Quantity, &li.UnitPrice, &li.AdjustmentIDs, &li.Subtotal, &li.TaxTotal,
			&li.DiscountTotal, &li.Total, &li.Position, &li.CreatedAt, &li.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

func (r *repository) ListByKind(ctx context.Context, companyID int64, kind Kind) ([]Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE company_id=$1 AND kind=$2 ORDER BY date DESC, id DESC`,
		companyID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *repository) ListOutstanding(ctx context.Context, companyID int64, kind Kind) ([]Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents
WHERE company_id=$1 AND kind=$2 AND status IN ('SENT','PARTIAL') AND amount_due > 0
ORDER BY due_date ASC`, companyID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func collectDocuments(rows pgx.Rows) ([]Document, error) {
	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) GetAdjustment(ctx context.Context, companyID, adjustmentID int64) (Adjustment, error) {
	var a Adjustment
	err := r.db.QueryRow(ctx,
		`SELECT id, company_id, category, type, computation, rate, recoverable, account_id, name, created_at, updated_at
FROM adjustments WHERE company_id=$1 AND id=$2`, companyID, adjustmentID).
		Scan(&a.ID, &a.CompanyID, &a.Category, &a.Type, &a.Computation, &a.Rate, &a.Recoverable,
			&a.AccountID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Adjustment{}, ErrAdjustmentNotFound
		}
		return Adjustment{}, err
	}
	return a, nil
}

func (r *repository) Insert(ctx context.Context, doc Document) (Document, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO documents (company_id, kind, number, entity_id, source_id, date, due_date, currency_code,
discount_method, discount_computation, discount_rate, status, subtotal, tax_total, discount_total, total, amount_paid, amount_due)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
RETURNING id, created_at, updated_at`,
		doc.CompanyID, doc.Kind, doc.Number, doc.EntityID, doc.SourceID, doc.Date, doc.DueDate,
		doc.CurrencyCode, doc.DiscountMethod, doc.DiscountComputation, doc.DiscountRate, doc.Status,
		doc.Subtotal, doc.TaxTotal, doc.DiscountTotal, doc.Total, doc.AmountPaid, doc.AmountDue)
	if err := row.Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return Document{}, err
	}
	for i := range doc.LineItems {
		doc.LineItems[i].DocumentKind = doc.Kind
		doc.LineItems[i].DocumentID = doc.ID
		if err := r.insertLineItem(ctx, &doc.LineItems[i]); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}

func (r *repository) insertLineItem(ctx context.Context, li *LineItem) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO document_line_items (document_kind, document_id, offering_id, account_id, description,
quantity, unit_price, adjustment_ids, subtotal, tax_total, discount_total, total, position)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13) RETURNING id, created_at, updated_at`,
		li.DocumentKind, li.DocumentID, li.OfferingID, li.AccountID, li.Description, li.Quantity,
		li.UnitPrice, li.AdjustmentIDs, li.Subtotal, li.TaxTotal, li.DiscountTotal, li.Total, li.Position)
	return row.Scan(&li.ID, &li.CreatedAt, &li.UpdatedAt)
}

func (r *repository) ReplaceLineItems(ctx context.Context, doc Document) (Document, error) {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM document_line_items WHERE document_kind=$1 AND document_id=$2`, doc.Kind, doc.ID); err != nil {
		return Document{}, err
	}
	for i := range doc.LineItems {
		doc.LineItems[i].DocumentKind = doc.Kind
		doc.LineItems[i].DocumentID = doc.ID
		if err := r.insertLineItem(ctx, &doc.LineItems[i]); err != nil {
			return Document{}, err
		}
	}
	_, err := r.db.Exec(ctx,
		`UPDATE documents SET subtotal=$3, tax_total=$4, discount_total=$5, total=$6, amount_due=total-amount_paid, updated_at=NOW()
WHERE company_id=$1 AND id=$2`,
		doc.CompanyID, doc.ID, doc.Subtotal, doc.TaxTotal, doc.DiscountTotal, doc.Total)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (r *repository) ListPayments(ctx context.Context, companyID int64, kind Kind, documentID int64) ([]Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, company_id, document_kind, document_id, paid_at, amount, method, bank_account_id, notes, created_at
FROM document_payments WHERE company_id=$1 AND document_kind=$2 AND document_id=$3 ORDER BY paid_at, id`,
		companyID, kind, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.DocumentKind, &p.DocumentID, &p.PaidAt, &p.Amount,
			&p.Method, &p.BankAccountID, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) ListRecurringDue(ctx context.Context, companyID int64) ([]RecurringInvoice, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+`, frequency, interval_type, interval_value, day_of_month, month, day_of_week,
end_type, max_occurrences, end_date, start_date, last_date, occurrences_count, payment_term_days, next_date
FROM documents JOIN recurring_schedules ON recurring_schedules.document_id = documents.id
WHERE company_id=$1 AND kind='RECURRING_INVOICE' AND status <> 'VOID' AND next_date <= NOW()
ORDER BY next_date ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RecurringInvoice
	for rows.Next() {
		var ri RecurringInvoice
		err := rows.Scan(&ri.ID, &ri.CompanyID, &ri.Kind, &ri.Number, &ri.EntityID, &ri.SourceID, &ri.Date,
			&ri.DueDate, &ri.CurrencyCode, &ri.DiscountMethod, &ri.DiscountComputation, &ri.DiscountRate,
			&ri.Status, &ri.ApprovedAt, &ri.Subtotal, &ri.TaxTotal, &ri.DiscountTotal, &ri.Total,
			&ri.AmountPaid, &ri.AmountDue, &ri.CreatedAt, &ri.UpdatedAt,
			&ri.Schedule.Frequency, &ri.Schedule.IntervalType, &ri.Schedule.IntervalValue,
			&ri.Schedule.DayOfMonth, &ri.Schedule.Month, &ri.Schedule.DayOfWeek,
			&ri.Schedule.EndType, &ri.Schedule.MaxOccurrences, &ri.Schedule.EndDate,
			&ri.Schedule.StartDate, &ri.Schedule.LastDate, &ri.Schedule.OccurrencesCount,
			&ri.PaymentTermDays, &ri.NextDate)
		if err != nil {
			return nil, err
		}
		out = append(out, ri)
	}
	return out, rows.Err()
}

func (r *repository) UpdateRecurringCursor(ctx context.Context, companyID, documentID int64, ri RecurringInvoice) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE recurring_schedules SET last_date=$3, occurrences_count=$4, next_date=$5
WHERE document_id=$2 AND EXISTS (SELECT 1 FROM documents WHERE id=$2 AND company_id=$1)`,
		companyID, documentID, ri.Schedule.LastDate, ri.Schedule.OccurrencesCount, ri.NextDate)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
