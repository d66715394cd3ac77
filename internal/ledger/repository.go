package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository encapsulates DB operations for the journal ledger.
type Repository interface {
	GetWithEntries(ctx context.Context, companyID, transactionID int64) (Transaction, error)
	ListPostedBetween(ctx context.Context, companyID int64, from, to time.Time) ([]Transaction, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes ledger writes available inside a transaction.
type TxRepository interface {
	InsertTransaction(ctx context.Context, in PostingInput) (Transaction, error)
	InsertEntries(ctx context.Context, transactionID int64, entries []EntryInput) error
	DeleteBySource(ctx context.Context, companyID int64, kind SourceKind, sourceID uuid.UUID) error
	EntriesExist(ctx context.Context, transactionID int64) (bool, error)
	GetTransactionForUpdate(ctx context.Context, companyID, transactionID int64) (Transaction, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a pgx-backed ledger repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const transactionColumns = `id, company_id, type, posted_at, amount, currency, description, source_kind, source_id, created_at, updated_at`

func (r *repository) GetWithEntries(ctx context.Context, companyID, transactionID int64) (Transaction, error) {
	var t Transaction
	err := r.db.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE company_id=$1 AND id=$2`,
		companyID, transactionID).
		Scan(&t.ID, &t.CompanyID, &t.Type, &t.PostedAt, &t.Amount, &t.Currency, &t.Description,
			&t.SourceKind, &t.SourceID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, transaction_id, account_id, type, amount, created_at, updated_at
FROM journal_entries WHERE transaction_id=$1 ORDER BY id ASC`, transactionID)
	if err != nil {
		return Transaction{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.Type, &e.Amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return Transaction{}, err
		}
		t.Entries = append(t.Entries, e)
	}
	return t, rows.Err()
}

func (r *repository) ListPostedBetween(ctx context.Context, companyID int64, from, to time.Time) ([]Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
WHERE company_id=$1 AND posted_at >= $2 AND posted_at <= $3 ORDER BY posted_at, id`,
		companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.Type, &t.PostedAt, &t.Amount, &t.Currency, &t.Description,
			&t.SourceKind, &t.SourceID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
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

func (r *txRepository) InsertTransaction(ctx context.Context, in PostingInput) (Transaction, error) {
	row := r.tx.QueryRow(ctx,
		`INSERT INTO transactions (company_id, type, posted_at, amount, currency, description, source_kind, source_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at, updated_at`,
		in.CompanyID, in.Type, in.PostedAt, in.Total(), in.Currency, in.Description, in.SourceKind, in.SourceID)
	t := Transaction{
		CompanyID:   in.CompanyID,
		Type:        in.Type,
		PostedAt:    in.PostedAt,
		Amount:      in.Total(),
		Currency:    in.Currency,
		Description: in.Description,
		SourceKind:  in.SourceKind,
		SourceID:    in.SourceID,
	}
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_transactions_source" {
			return Transaction{}, ErrSourceAlreadyLinked
		}
		return Transaction{}, err
	}
	return t, nil
}

func (r *txRepository) InsertEntries(ctx context.Context, transactionID int64, entries []EntryInput) error {
	for _, e := range entries {
		if _, err := r.tx.Exec(ctx,
			`INSERT INTO journal_entries (transaction_id, account_id, type, amount) VALUES ($1,$2,$3,$4)`,
			transactionID, e.AccountID, e.Type, e.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) DeleteBySource(ctx context.Context, companyID int64, kind SourceKind, sourceID uuid.UUID) error {
	// journal_entries cascade via FK on transaction_id
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

func (r *txRepository) GetTransactionForUpdate(ctx context.Context, companyID, transactionID int64) (Transaction, error) {
	var t Transaction
	err := r.tx.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE company_id=$1 AND id=$2 FOR UPDATE`,
		companyID, transactionID).
		Scan(&t.ID, &t.CompanyID, &t.Type, &t.PostedAt, &t.Amount, &t.Currency, &t.Description,
			&t.SourceKind, &t.SourceID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	return t, nil
}
