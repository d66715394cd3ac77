package reports

import (
	"github.com/clearbooks-io/clearbooks/internal/accounts"
)

// IncomeStatement is the profit and loss statement over a window.
// Gross profit subtracts cost of goods sold from revenue before the
// remaining operating expenses.
type IncomeStatement struct {
	Window            Window  `json:"window"`
	Revenue           Section `json:"revenue"`
	CostOfGoodsSold   Section `json:"cost_of_goods_sold"`
	GrossProfit       int64   `json:"gross_profit"`
	OperatingExpenses Section `json:"operating_expenses"`
	NetIncome         int64   `json:"net_income"`
}

// isCOGS reports whether a row belongs in the cost-of-goods-sold
// block. The seeded chart marks the COGS account with a system kind;
// sibling accounts under the same subtype follow it.
func isCOGS(r AccountRow, cogsSubtypes map[int64]bool) bool {
	if r.Account.SystemKind != nil && *r.Account.SystemKind == accounts.SystemCostOfGoodsSold {
		return true
	}
	return cogsSubtypes[r.Account.SubtypeID]
}

// BuildIncomeStatement renders nominal-category movements into the
// profit and loss layout. Real rows in the input are ignored.
func BuildIncomeStatement(window Window, rows []AccountRow) IncomeStatement {
	cogsSubtypes := make(map[int64]bool)
	for _, r := range rows {
		if r.Account.SystemKind != nil && *r.Account.SystemKind == accounts.SystemCostOfGoodsSold {
			cogsSubtypes[r.Account.SubtypeID] = true
		}
	}

	var revenue, cogs, expenses []AccountRow
	for _, r := range rows {
		switch r.Account.Category.Base() {
		case accounts.CategoryRevenue:
			revenue = append(revenue, r)
		case accounts.CategoryExpense:
			if isCOGS(r, cogsSubtypes) {
				cogs = append(cogs, r)
			} else {
				expenses = append(expenses, r)
			}
		}
	}
	pl := IncomeStatement{
		Window:            window,
		Revenue:           buildSection(accounts.CategoryRevenue.Label(), revenue),
		CostOfGoodsSold:   buildSection("Cost of Goods Sold", cogs),
		OperatingExpenses: buildSection("Operating Expenses", expenses),
	}
	pl.GrossProfit = pl.Revenue.Total - pl.CostOfGoodsSold.Total
	pl.NetIncome = pl.GrossProfit - pl.OperatingExpenses.Total
	return pl
}
