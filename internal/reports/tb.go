package reports

import (
	"github.com/clearbooks-io/clearbooks/internal/accounts"
)

// TrialBalanceRow places an account's ending balance in the debit or
// credit column according to its sign and normal side.
type TrialBalanceRow struct {
	AccountID int64  `json:"account_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Debit     int64  `json:"debit"`
	Credit    int64  `json:"credit"`
}

// TrialBalanceSection groups rows by base category.
type TrialBalanceSection struct {
	Label  string            `json:"label"`
	Rows   []TrialBalanceRow `json:"rows"`
	Debit  int64             `json:"debit"`
	Credit int64             `json:"credit"`
}

// TrialBalance lists every active account's ending balance. Debit and
// credit totals are always equal when the ledger itself balances.
type TrialBalance struct {
	Window      Window                `json:"window"`
	Sections    []TrialBalanceSection `json:"sections"`
	TotalDebit  int64                 `json:"total_debit"`
	TotalCredit int64                 `json:"total_credit"`
}

// BuildTrialBalance converts aggregated balances into the two-column
// trial balance layout. A positive ending lands on the account's
// normal side; a negative ending flips to the opposite column.
func BuildTrialBalance(window Window, rows []AccountRow) TrialBalance {
	tb := TrialBalance{Window: window}
	index := make(map[accounts.Category]int)
	for _, r := range rows {
		ending := r.Balance.Ending
		if ending == 0 {
			continue
		}
		row := TrialBalanceRow{
			AccountID: r.Account.ID,
			Code:      r.Account.Code,
			Name:      r.Account.Name,
		}
		side := r.Account.Category.NormalBalance()
		if ending < 0 {
			ending = -ending
			if side == accounts.SideDebit {
				side = accounts.SideCredit
			} else {
				side = accounts.SideDebit
			}
		}
		if side == accounts.SideDebit {
			row.Debit = ending
		} else {
			row.Credit = ending
		}

		base := r.Account.Category.Base()
		i, ok := index[base]
		if !ok {
			i = len(tb.Sections)
			index[base] = i
			tb.Sections = append(tb.Sections, TrialBalanceSection{Label: base.Label()})
		}
		tb.Sections[i].Rows = append(tb.Sections[i].Rows, row)
		tb.Sections[i].Debit += row.Debit
		tb.Sections[i].Credit += row.Credit
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
	}
	return tb
}
