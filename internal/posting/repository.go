package posting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearbooks-io/clearbooks/internal/documents"
	"github.com/clearbooks-io/clearbooks/internal/ledger"
)

// Repository opens posting transactions. Every ledger write and its
// matching document update commit or roll back together.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository combines the ledger and document writes available
// inside one posting transaction.
type TxRepository interface {
	InsertTransaction(ctx context.Context, in ledger.PostingInput) (ledger.Transaction, error)
	InsertEntries(ctx context.Context, transactionID int64, entries []ledger.EntryInput) error
	DeleteBySource(ctx context.Context, companyID int64, kind ledger.SourceKind, sourceID uuid.UUID) error
	EntriesExist(ctx context.Context, transactionID int64) (bool, error)

	GetDocumentForUpdate(ctx context.Context, companyID, documentID int64) (documents.Document, error)
	UpdateDocumentPosting(ctx context.Context, doc documents.Document) error
	InsertPayment(ctx context.Context, payment documents.Payment) (documents.Payment, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a pgx-backed posting repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertTransaction(ctx context.Context, in ledger.PostingInput) (ledger.Transaction, error) {
	t := ledger.Transaction{
		CompanyID:   in.CompanyID,
		Type:        in.Type,
		PostedAt:    in.PostedAt,
		Amount:      in.Total(),
		Currency:    in.Currency,
		Description: in.Description,
		SourceKind:  in.SourceKind,
		SourceID:    in.SourceID,
	}
	err := r.tx.QueryRow(ctx,
		`INSERT INTO transactions (company_id, type, posted_at, amount, currency, description, source_kind, source_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at, updated_at`,
		in.CompanyID, in.Type, in.PostedAt, in.Total(), in.Currency, in.Description, in.SourceKind, in.SourceID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return t, nil
}

func (r *txRepository) InsertEntries(ctx context.Context, transactionID int64, entries []ledger.EntryInput) error {
	for _, e := range entries {
		if _, err := r.tx.Exec(ctx,
			`INSERT INTO journal_entries (transaction_id, account_id, type, amount) VALUES ($1,$2,$3,$4)`,
			transactionID, e.AccountID, e.Type, e.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) DeleteBySource(ctx context.Context, companyID int64, kind ledger.SourceKind, sourceID uuid.UUID) error {
	_, err := r.tx.Exec(ctx,
		`DELETE FROM transactions WHERE company_id=$1 AND source_kind=$2 AND source_id=$3`,
		companyID, kind, sourceID)
	return err
}

func (r *txRepository) EntriesExist(ctx context.Context, transactionID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE transaction_id=$1)`, transactionID).Scan(&exists)
	return exists, err
}

func (r *txRepository) GetDocumentForUpdate(ctx context.Context, companyID, documentID int64) (documents.Document, error) {
	var d documents.Document
	var approvedAt *time.Time
	err := r.tx.QueryRow(ctx,
		`SELECT id, company_id, kind, number, entity_id, source_id, date, due_date, currency_code,
        status, approved_at, subtotal, tax_total, discount_total, total, amount_paid, amount_due
FROM documents WHERE company_id=$1 AND id=$2 FOR UPDATE`,
		companyID, documentID).
		Scan(&d.ID, &d.CompanyID, &d.Kind, &d.Number, &d.EntityID, &d.SourceID, &d.Date, &d.DueDate,
			&d.CurrencyCode, &d.Status, &approvedAt, &d.Subtotal, &d.TaxTotal, &d.DiscountTotal,
			&d.Total, &d.AmountPaid, &d.AmountDue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return documents.Document{}, documents.ErrDocumentNotFound
		}
		return documents.Document{}, err
	}
	d.ApprovedAt = approvedAt

	rows, err := r.tx.Query(ctx,
		`SELECT id, account_id, description, quantity, unit_price, adjustment_ids, subtotal, tax_total, discount_total, total
FROM line_items WHERE document_kind=$1 AND document_id=$2 ORDER BY position, id`,
		d.Kind, d.ID)
	if err != nil {
		return documents.Document{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var li documents.LineItem
		if err := rows.Scan(&li.ID, &li.AccountID, &li.Description, &li.Quantity, &li.UnitPrice,
			&li.AdjustmentIDs, &li.Subtotal, &li.TaxTotal, &li.DiscountTotal, &li.Total); err != nil {
			return documents.Document{}, err
		}
		li.DocumentKind = d.Kind
		li.DocumentID = d.ID
		d.LineItems = append(d.LineItems, li)
	}
	return d, rows.Err()
}

func (r *txRepository) UpdateDocumentPosting(ctx context.Context, doc documents.Document) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE documents SET status=$3, approved_at=$4, amount_paid=$5, amount_due=$6, updated_at=NOW()
WHERE company_id=$1 AND id=$2`,
		doc.CompanyID, doc.ID, doc.Status, doc.ApprovedAt, doc.AmountPaid, doc.AmountDue)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return documents.ErrDocumentNotFound
	}
	return nil
}

func (r *txRepository) InsertPayment(ctx context.Context, payment documents.Payment) (documents.Payment, error) {
	err := r.tx.QueryRow(ctx,
		`INSERT INTO payments (company_id, document_kind, document_id, source_id, paid_at, amount, refund, method, bank_account_id, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id, created_at`,
		payment.CompanyID, payment.DocumentKind, payment.DocumentID, payment.SourceID, payment.PaidAt,
		payment.Amount, payment.Refund, payment.Method, payment.BankAccountID, payment.Notes).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return documents.Payment{}, err
	}
	return payment, nil
}
