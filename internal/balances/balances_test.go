package balances

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
)

type memorySumsRepo struct {
	period map[int64]Sums
	prior  map[int64]Sums
}

func (r *memorySumsRepo) SumsInRange(ctx context.Context, companyID int64, accountIDs []int64, start, end time.Time) (map[int64]Sums, error) {
	return r.period, nil
}

func (r *memorySumsRepo) SumsBefore(ctx context.Context, companyID int64, accountIDs []int64, before time.Time) (map[int64]Sums, error) {
	return r.prior, nil
}

func TestComputeSignConvention(t *testing.T) {
	cases := []struct {
		name     string
		category accounts.Category
		sums     Sums
		net      int64
	}{
		{"asset debit increases", accounts.CategoryAsset, Sums{Debit: 10000}, 10000},
		{"revenue credit increases", accounts.CategoryRevenue, Sums{Credit: 10000}, 10000},
		{"liability debit decreases", accounts.CategoryLiability, Sums{Debit: 10000}, -10000},
		{"expense credit decreases", accounts.CategoryExpense, Sums{Credit: 10000}, -10000},
		{"contra revenue is debit normal", accounts.CategoryContraRevenue, Sums{Debit: 2500}, 2500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Compute(tc.category, Sums{}, tc.sums)
			require.Equal(t, tc.net, b.Net)
		})
	}
}

func TestComputeRealCarriesStartingBalance(t *testing.T) {
	b := Compute(accounts.CategoryAsset, Sums{Debit: 50000, Credit: 20000}, Sums{Debit: 10000, Credit: 4000})
	require.True(t, b.Carried)
	require.Equal(t, int64(30000), b.Starting)
	require.Equal(t, int64(6000), b.Net)
	require.Equal(t, b.Starting+b.Net, b.Ending)
}

func TestComputeNominalHasNoStartingBalance(t *testing.T) {
	b := Compute(accounts.CategoryRevenue, Sums{Credit: 99999}, Sums{Credit: 7000})
	require.False(t, b.Carried)
	require.Equal(t, int64(0), b.Starting)
	require.Equal(t, int64(7000), b.Ending)
}

func TestComputeZeroSums(t *testing.T) {
	require.Equal(t, Balance{Carried: true}, Compute(accounts.CategoryAsset, Sums{}, Sums{}))
	require.Equal(t, Balance{}, Compute(accounts.CategoryExpense, Sums{}, Sums{}))
}

// Consecutive windows must tile: ending of one period equals starting
// of the next for real accounts.
func TestConsecutiveWindowsTile(t *testing.T) {
	jan := Sums{Debit: 12000, Credit: 3000}
	feb := Sums{Debit: 500, Credit: 8000}

	first := Compute(accounts.CategoryAsset, Sums{}, jan)
	second := Compute(accounts.CategoryAsset, jan, feb)
	require.Equal(t, first.Ending, second.Starting)
}

func TestForAccountsBatch(t *testing.T) {
	ctx := context.Background()
	asset := accounts.Account{ID: 1, CompanyID: 1, Category: accounts.CategoryAsset}
	revenue := accounts.Account{ID: 2, CompanyID: 1, Category: accounts.CategoryRevenue}
	idle := accounts.Account{ID: 3, CompanyID: 1, Category: accounts.CategoryExpense}

	repo := &memorySumsRepo{
		period: map[int64]Sums{
			1: {Debit: 10000},
			2: {Credit: 10000},
		},
		prior: map[int64]Sums{1: {Debit: 2000}},
	}
	agg := NewAggregator(repo)

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	got, err := agg.ForAccounts(ctx, 1, []accounts.Account{asset, revenue, idle}, start, end)
	require.NoError(t, err)

	require.Equal(t, int64(2000), got[1].Starting)
	require.Equal(t, int64(12000), got[1].Ending)
	require.Equal(t, int64(10000), got[2].Ending)
	require.Equal(t, Balance{}, got[3])
}

func TestForAccountsWindowValidation(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregator(&memorySumsRepo{})
	day := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	// start == end is a valid single-day window
	_, err := agg.ForAccounts(ctx, 1, nil, day, day)
	require.NoError(t, err)

	_, err = agg.ForAccounts(ctx, 1, nil, day, day.AddDate(0, 0, -1))
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestFiscalPeriodStart(t *testing.T) {
	loc := time.UTC
	require.Equal(t,
		time.Date(2024, time.April, 1, 0, 0, 0, 0, loc),
		FiscalPeriodStart(time.Date(2024, time.June, 10, 0, 0, 0, 0, loc), time.April))
	require.Equal(t,
		time.Date(2023, time.April, 1, 0, 0, 0, 0, loc),
		FiscalPeriodStart(time.Date(2024, time.February, 10, 0, 0, 0, 0, loc), time.April))
	require.Equal(t,
		time.Date(2024, time.January, 1, 0, 0, 0, 0, loc),
		FiscalPeriodStart(time.Date(2024, time.February, 10, 0, 0, 0, 0, loc), 0))
}
