package balances

import (
	"time"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
)

// Sums holds raw debit/credit totals for one account over a window.
type Sums struct {
	Debit  int64
	Credit int64
}

// Balance is the aggregated view of one account over a date range.
// Starting and Ending are only meaningful when Carried is true (real
// categories); nominal categories report their net movement as the
// ending figure and carry nothing forward.
type Balance struct {
	Starting int64
	Debit    int64
	Credit   int64
	Net      int64
	Ending   int64
	Carried  bool
}

// netFor applies the category sign convention to raw sums.
func netFor(category accounts.Category, s Sums) int64 {
	if category.NormalBalance() == accounts.SideDebit {
		return s.Debit - s.Credit
	}
	return s.Credit - s.Debit
}

// Compute aggregates a period's sums plus the pre-period sums into a
// Balance, applying the normal-balance sign rule and the real/nominal
// starting-balance semantics. Zero sums produce an all-zero Balance.
func Compute(category accounts.Category, prior, period Sums) Balance {
	b := Balance{
		Debit:  period.Debit,
		Credit: period.Credit,
		Net:    netFor(category, period),
	}
	if category.IsReal() {
		b.Carried = true
		b.Starting = netFor(category, prior)
		b.Ending = b.Starting + b.Net
	} else {
		// nominal: the period movement is the reported ending figure
		b.Ending = b.Net
	}
	return b
}

// FiscalPeriodStart returns the start of the fiscal year containing t,
// given the 1-based month the fiscal year begins in.
func FiscalPeriodStart(t time.Time, fiscalYearStartMonth time.Month) time.Time {
	if fiscalYearStartMonth == 0 {
		fiscalYearStartMonth = time.January
	}
	year := t.Year()
	if t.Month() < fiscalYearStartMonth {
		year--
	}
	return time.Date(year, fiscalYearStartMonth, 1, 0, 0, 0, 0, t.Location())
}
