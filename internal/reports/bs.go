package reports

import (
	"time"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
)

// BalanceSheet is the statement of financial position as of one date.
// CurrentEarnings is the fiscal-year-to-date net income, reported as
// an equity line so the sheet balances before period close.
type BalanceSheet struct {
	AsOf            time.Time `json:"as_of"`
	Assets          Section   `json:"assets"`
	Liabilities     Section   `json:"liabilities"`
	Equity          Section   `json:"equity"`
	CurrentEarnings int64     `json:"current_earnings"`
	TotalAssets     int64     `json:"total_assets"`
	TotalLiabEquity int64     `json:"total_liabilities_and_equity"`
}

// BuildBalanceSheet renders real-category balances into the statement
// hierarchy. Nominal rows in the input are ignored.
func BuildBalanceSheet(asOf time.Time, rows []AccountRow, currentEarnings int64) BalanceSheet {
	var assets, liabilities, equity []AccountRow
	for _, r := range rows {
		switch r.Account.Category.Base() {
		case accounts.CategoryAsset:
			assets = append(assets, r)
		case accounts.CategoryLiability:
			liabilities = append(liabilities, r)
		case accounts.CategoryEquity:
			equity = append(equity, r)
		}
	}
	bs := BalanceSheet{
		AsOf:            asOf,
		Assets:          buildSection(accounts.CategoryAsset.Label(), assets),
		Liabilities:     buildSection(accounts.CategoryLiability.Label(), liabilities),
		Equity:          buildSection(accounts.CategoryEquity.Label(), equity),
		CurrentEarnings: currentEarnings,
	}
	bs.TotalAssets = bs.Assets.Total
	bs.TotalLiabEquity = bs.Liabilities.Total + bs.Equity.Total + currentEarnings
	return bs
}
