package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository encapsulates DB operations for the account directory.
type Repository interface {
	Get(ctx context.Context, companyID, accountID int64) (Account, error)
	GetSystem(ctx context.Context, companyID int64, kind SystemAccountKind) (Account, error)
	ListByCompany(ctx context.Context, companyID int64) ([]Account, error)
	ListInCategory(ctx context.Context, companyID int64, category Category, excluding []int64) ([]Account, error)
	ListSubtypes(ctx context.Context, companyID int64) ([]Subtype, error)
	Insert(ctx context.Context, account Account) (Account, error)
	InsertSubtype(ctx context.Context, subtype Subtype) (Subtype, error)
	UpdateParent(ctx context.Context, companyID, accountID int64, parentID *int64) error
	HasEntries(ctx context.Context, accountID int64) (bool, error)
	Delete(ctx context.Context, companyID, accountID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a pgx-backed account repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, company_id, subtype_id, category, code, name, currency_code, parent_id, accountable_kind, accountable_id, system_kind, archived, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.CompanyID, &a.SubtypeID, &a.Category, &a.Code, &a.Name, &a.CurrencyCode,
		&a.ParentID, &a.AccountableKind, &a.AccountableID, &a.SystemKind, &a.Archived, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) Get(ctx context.Context, companyID, accountID int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE company_id=$1 AND id=$2`, companyID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) GetSystem(ctx context.Context, companyID int64, kind SystemAccountKind) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE company_id=$1 AND system_kind=$2`, companyID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrChartNotSeeded
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE company_id=$1
ORDER BY array_position(ARRAY['ASSET','CONTRA_ASSET','LIABILITY','CONTRA_LIABILITY','EQUITY','CONTRA_EQUITY','REVENUE','CONTRA_REVENUE','EXPENSE','CONTRA_EXPENSE'], category::text), code ASC`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *repository) ListInCategory(ctx context.Context, companyID int64, category Category, excluding []int64) ([]Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts
WHERE company_id=$1 AND category=$2 AND NOT (id = ANY($3))
ORDER BY code ASC`, companyID, category, excluding)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) ListSubtypes(ctx context.Context, companyID int64) ([]Subtype, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, company_id, category, name, multi_currency, inverse_cash_flow, created_at, updated_at
FROM account_subtypes WHERE company_id=$1 ORDER BY category, name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subtype
	for rows.Next() {
		var s Subtype
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Category, &s.Name, &s.MultiCurrency, &s.InverseCashFlow, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Insert(ctx context.Context, account Account) (Account, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO accounts (company_id, subtype_id, category, code, name, currency_code, parent_id, accountable_kind, accountable_id, system_kind, archived)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id, created_at, updated_at`,
		account.CompanyID, account.SubtypeID, account.Category, account.Code, account.Name,
		account.CurrencyCode, account.ParentID, account.AccountableKind, account.AccountableID,
		account.SystemKind, account.Archived)
	if err := row.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_accounts_company_code" {
			return Account{}, ErrDuplicateCode
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) InsertSubtype(ctx context.Context, subtype Subtype) (Subtype, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO account_subtypes (company_id, category, name, multi_currency, inverse_cash_flow)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at, updated_at`,
		subtype.CompanyID, subtype.Category, subtype.Name, subtype.MultiCurrency, subtype.InverseCashFlow)
	if err := row.Scan(&subtype.ID, &subtype.CreatedAt, &subtype.UpdatedAt); err != nil {
		return Subtype{}, err
	}
	return subtype, nil
}

func (r *repository) UpdateParent(ctx context.Context, companyID, accountID int64, parentID *int64) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE accounts SET parent_id=$3, updated_at=NOW() WHERE company_id=$1 AND id=$2`,
		companyID, accountID, parentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *repository) HasEntries(ctx context.Context, accountID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE account_id=$1)`, accountID).Scan(&exists)
	return exists, err
}

func (r *repository) Delete(ctx context.Context, companyID, accountID int64) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM accounts WHERE company_id=$1 AND id=$2`, companyID, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
