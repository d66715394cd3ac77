package reports

import (
	"time"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
	"github.com/clearbooks-io/clearbooks/internal/balances"
)

// AccountRow couples an account, its subtype, and its aggregated
// balance for one report window. Builders consume slices of these and
// never touch storage.
type AccountRow struct {
	Account accounts.Account
	Subtype accounts.Subtype
	Balance balances.Balance
}

// presentedAmount renders the row's ending balance relative to its
// base category's normal side, so contra accounts appear negative
// inside their parent section.
func (r AccountRow) presentedAmount() int64 {
	if r.Account.Category.NormalBalance() != r.Account.Category.Base().NormalBalance() {
		return -r.Balance.Ending
	}
	return r.Balance.Ending
}

// Row is one account line in a rendered report.
type Row struct {
	AccountID int64  `json:"account_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Amount    int64  `json:"amount"`
}

// Group collects rows under a subtype with a subtotal.
type Group struct {
	Name  string `json:"name"`
	Rows  []Row  `json:"rows"`
	Total int64  `json:"total"`
}

// Section is a category-level block of a report.
type Section struct {
	Label  string  `json:"label"`
	Groups []Group `json:"groups"`
	Total  int64   `json:"total"`
}

// Window is the inclusive date range a report covers.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// buildSection groups rows by subtype, keeping account-code order
// inside each group and first-seen subtype order across groups.
func buildSection(label string, rows []AccountRow) Section {
	sec := Section{Label: label}
	index := make(map[int64]int)
	for _, r := range rows {
		amount := r.presentedAmount()
		if amount == 0 && r.Balance.Debit == 0 && r.Balance.Credit == 0 {
			continue
		}
		i, ok := index[r.Subtype.ID]
		if !ok {
			i = len(sec.Groups)
			index[r.Subtype.ID] = i
			sec.Groups = append(sec.Groups, Group{Name: r.Subtype.Name})
		}
		sec.Groups[i].Rows = append(sec.Groups[i].Rows, Row{
			AccountID: r.Account.ID,
			Code:      r.Account.Code,
			Name:      r.Account.Name,
			Amount:    amount,
		})
		sec.Groups[i].Total += amount
		sec.Total += amount
	}
	return sec
}
