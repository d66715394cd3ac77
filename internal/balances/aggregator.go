package balances

import (
	"context"
	"errors"
	"time"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
)

// ErrInvalidWindow indicates a range whose end precedes its start.
// A start equal to end is a valid single-day window.
var ErrInvalidWindow = errors.New("balances: window end before start")

// Aggregator computes period balances from raw entry sums.
type Aggregator struct {
	repo Repository
}

// NewAggregator builds the balance aggregator.
func NewAggregator(repo Repository) *Aggregator {
	return &Aggregator{repo: repo}
}

// ForAccount returns one account's balance over the inclusive window
// [start, end]. Accounts with no entries yield an all-zero Balance.
func (a *Aggregator) ForAccount(ctx context.Context, acc accounts.Account, start, end time.Time) (Balance, error) {
	m, err := a.ForAccounts(ctx, acc.CompanyID, []accounts.Account{acc}, start, end)
	if err != nil {
		return Balance{}, err
	}
	return m[acc.ID], nil
}

// ForAccounts returns balances for a set of accounts in two batched
// queries so a report sees one consistent snapshot per window side.
// The result map has an entry for every requested account.
func (a *Aggregator) ForAccounts(ctx context.Context, companyID int64, accs []accounts.Account, start, end time.Time) (map[int64]Balance, error) {
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}
	ids := make([]int64, 0, len(accs))
	needPrior := false
	for _, acc := range accs {
		ids = append(ids, acc.ID)
		if acc.Category.IsReal() {
			needPrior = true
		}
	}

	period, err := a.repo.SumsInRange(ctx, companyID, ids, start, end)
	if err != nil {
		return nil, err
	}
	prior := map[int64]Sums{}
	if needPrior {
		prior, err = a.repo.SumsBefore(ctx, companyID, ids, start)
		if err != nil {
			return nil, err
		}
	}

	out := make(map[int64]Balance, len(accs))
	for _, acc := range accs {
		out[acc.ID] = Compute(acc.Category, prior[acc.ID], period[acc.ID])
	}
	return out, nil
}
