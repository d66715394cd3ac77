package balances

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads debit/credit sums from posted ledger entries.
type Repository interface {
	// SumsInRange returns per-account sums over the inclusive window
	// [start, end]. Accounts with no entries are absent from the map.
	SumsInRange(ctx context.Context, companyID int64, accountIDs []int64, start, end time.Time) (map[int64]Sums, error)
	// SumsBefore returns per-account sums strictly before the given date.
	SumsBefore(ctx context.Context, companyID int64, accountIDs []int64, before time.Time) (map[int64]Sums, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the Postgres-backed sums reader.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const sumsInRangeSQL = `
SELECT e.account_id,
       COALESCE(SUM(e.amount) FILTER (WHERE e.type = 'DEBIT'), 0),
       COALESCE(SUM(e.amount) FILTER (WHERE e.type = 'CREDIT'), 0)
FROM journal_entries e
JOIN transactions t ON t.id = e.transaction_id
WHERE t.company_id = $1
  AND e.account_id = ANY($2)
  AND t.posted_at >= $3
  AND t.posted_at <= $4
GROUP BY e.account_id`

func (r *pgRepository) SumsInRange(ctx context.Context, companyID int64, accountIDs []int64, start, end time.Time) (map[int64]Sums, error) {
	rows, err := r.pool.Query(ctx, sumsInRangeSQL, companyID, accountIDs, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSums(rows)
}

const sumsBeforeSQL = `
SELECT e.account_id,
       COALESCE(SUM(e.amount) FILTER (WHERE e.type = 'DEBIT'), 0),
       COALESCE(SUM(e.amount) FILTER (WHERE e.type = 'CREDIT'), 0)
FROM journal_entries e
JOIN transactions t ON t.id = e.transaction_id
WHERE t.company_id = $1
  AND e.account_id = ANY($2)
  AND t.posted_at < $3
GROUP BY e.account_id`

func (r *pgRepository) SumsBefore(ctx context.Context, companyID int64, accountIDs []int64, before time.Time) (map[int64]Sums, error) {
	rows, err := r.pool.Query(ctx, sumsBeforeSQL, companyID, accountIDs, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSums(rows)
}

type sumsRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSums(rows sumsRows) (map[int64]Sums, error) {
	out := make(map[int64]Sums)
	for rows.Next() {
		var id int64
		var s Sums
		if err := rows.Scan(&id, &s.Debit, &s.Credit); err != nil {
			return nil, err
		}
		out[id] = s
	}
	return out, rows.Err()
}
