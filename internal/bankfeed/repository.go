package bankfeed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores feed lines and their intake transactions.
type Repository interface {
	// InsertLine stores a feed line and its entry-less ledger
	// transaction atomically. Returns (line, false, nil) when the
	// fingerprint was already imported.
	InsertLine(ctx context.Context, line RawTransaction) (RawTransaction, bool, error)
	Get(ctx context.Context, companyID, lineID int64) (RawTransaction, error)
	ListUncategorized(ctx context.Context, companyID, bankAccountID int64) ([]RawTransaction, error)
	MarkCategorized(ctx context.Context, companyID, lineID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a pgx-backed feed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const lineColumns = `id, company_id, bank_account_id, source_id, posted_at, amount, currency, description, reference, transaction_id, categorized, created_at`

func (r *repository) InsertLine(ctx context.Context, line RawTransaction) (RawTransaction, bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return RawTransaction{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txnType := "WITHDRAWAL"
	amount := -line.Amount
	if line.Deposit() {
		txnType = "DEPOSIT"
		amount = line.Amount
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO transactions (company_id, type, posted_at, amount, currency, description, source_kind, source_id)
VALUES ($1,$2,$3,$4,$5,$6,'BANK',$7) RETURNING id`,
		line.CompanyID, txnType, line.PostedAt, amount, line.Currency, line.Description, line.SourceID).
		Scan(&line.TransactionID)
	if err != nil {
		return RawTransaction{}, false, err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO bank_feed_lines (company_id, bank_account_id, source_id, posted_at, amount, currency, description, reference, transaction_id, fingerprint)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id, created_at`,
		line.CompanyID, line.BankAccountID, line.SourceID, line.PostedAt, line.Amount,
		line.Currency, line.Description, line.Reference, line.TransactionID, line.Fingerprint()).
		Scan(&line.ID, &line.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_bank_feed_lines_fingerprint" {
			return RawTransaction{}, false, nil
		}
		return RawTransaction{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return RawTransaction{}, false, err
	}
	return line, true, nil
}

func (r *repository) Get(ctx context.Context, companyID, lineID int64) (RawTransaction, error) {
	var line RawTransaction
	err := r.db.QueryRow(ctx,
		`SELECT `+lineColumns+` FROM bank_feed_lines WHERE company_id=$1 AND id=$2`,
		companyID, lineID).
		Scan(&line.ID, &line.CompanyID, &line.BankAccountID, &line.SourceID, &line.PostedAt,
			&line.Amount, &line.Currency, &line.Description, &line.Reference,
			&line.TransactionID, &line.Categorized, &line.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RawTransaction{}, ErrLineNotFound
		}
		return RawTransaction{}, err
	}
	return line, nil
}

func (r *repository) ListUncategorized(ctx context.Context, companyID, bankAccountID int64) ([]RawTransaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+lineColumns+` FROM bank_feed_lines
WHERE company_id=$1 AND bank_account_id=$2 AND NOT categorized ORDER BY posted_at, id`,
		companyID, bankAccountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RawTransaction
	for rows.Next() {
		var line RawTransaction
		if err := rows.Scan(&line.ID, &line.CompanyID, &line.BankAccountID, &line.SourceID, &line.PostedAt,
			&line.Amount, &line.Currency, &line.Description, &line.Reference,
			&line.TransactionID, &line.Categorized, &line.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (r *repository) MarkCategorized(ctx context.Context, companyID, lineID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bank_feed_lines SET categorized=TRUE WHERE company_id=$1 AND id=$2`,
		companyID, lineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}
