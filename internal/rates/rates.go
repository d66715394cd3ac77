package rates

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrRateNotFound indicates no stored rate covers the requested pair
// on or before the requested date.
var ErrRateNotFound = errors.New("rates: rate not found")

// Source answers exchange rate lookups for currency pairs.
type Source struct {
	db *pgxpool.Pool
}

// NewSource constructs a pgx-backed rate source.
func NewSource(db *pgxpool.Pool) *Source {
	return &Source{db: db}
}

// Rate returns the most recent rate for from/to effective on or
// before the given date. The inverse pair is consulted when only the
// opposite direction is stored.
func (s *Source) Rate(ctx context.Context, from, to string, on time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	var raw string
	err := s.db.QueryRow(ctx,
		`SELECT rate::text FROM exchange_rates
WHERE from_currency=$1 AND to_currency=$2 AND effective_on <= $3
ORDER BY effective_on DESC LIMIT 1`,
		from, to, on).Scan(&raw)
	if err == nil {
		return decimal.NewFromString(raw)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, err
	}

	err = s.db.QueryRow(ctx,
		`SELECT rate::text FROM exchange_rates
WHERE from_currency=$1 AND to_currency=$2 AND effective_on <= $3
ORDER BY effective_on DESC LIMIT 1`,
		to, from, on).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrRateNotFound
		}
		return decimal.Zero, err
	}
	inverse, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if inverse.IsZero() {
		return decimal.Zero, ErrRateNotFound
	}
	return decimal.NewFromInt(1).DivRound(inverse, 10), nil
}
