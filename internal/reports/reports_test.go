package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
	"github.com/clearbooks-io/clearbooks/internal/balances"
	"github.com/clearbooks-io/clearbooks/internal/documents"
)

func row(id int64, code, name string, cat accounts.Category, st accounts.Subtype, bal balances.Balance) AccountRow {
	return AccountRow{
		Account: accounts.Account{ID: id, Code: code, Name: name, Category: cat, SubtypeID: st.ID},
		Subtype: st,
		Balance: bal,
	}
}

var (
	stCash    = accounts.Subtype{ID: 1, Category: accounts.CategoryAsset, Name: accounts.CashSubtypeName}
	stRecv    = accounts.Subtype{ID: 2, Category: accounts.CategoryAsset, Name: "Receivables"}
	stPayab   = accounts.Subtype{ID: 3, Category: accounts.CategoryLiability, Name: "Payables"}
	stEquity  = accounts.Subtype{ID: 4, Category: accounts.CategoryEquity, Name: "Owner Equity"}
	stRevenue = accounts.Subtype{ID: 5, Category: accounts.CategoryRevenue, Name: "Operating Revenue"}
	stCOGS    = accounts.Subtype{ID: 6, Category: accounts.CategoryExpense, Name: "Cost of Goods Sold"}
	stOpex    = accounts.Subtype{ID: 7, Category: accounts.CategoryExpense, Name: "Operating Expenses"}
	stDepr    = accounts.Subtype{ID: 8, Category: accounts.CategoryContraAsset, Name: "Accumulated Depreciation"}
	stLoans   = accounts.Subtype{ID: 9, Category: accounts.CategoryLiability, Name: "Loans Payable", InverseCashFlow: true}
)

func testWindow() Window {
	return Window{
		Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildTrialBalanceColumns(t *testing.T) {
	rows := []AccountRow{
		row(1, "1000", "Cash", accounts.CategoryAsset, stCash, balances.Balance{Ending: 50000, Carried: true}),
		row(2, "2000", "Payables", accounts.CategoryLiability, stPayab, balances.Balance{Ending: 20000, Carried: true}),
		// overdrawn asset flips to the credit column
		row(3, "1010", "Overdraft", accounts.CategoryAsset, stCash, balances.Balance{Ending: -5000, Carried: true}),
		row(4, "4000", "Sales", accounts.CategoryRevenue, stRevenue, balances.Balance{Ending: 35000}),
		row(5, "5100", "Rent", accounts.CategoryExpense, stOpex, balances.Balance{Ending: 10000}),
		row(6, "9999", "Idle", accounts.CategoryExpense, stOpex, balances.Balance{}),
	}
	tb := BuildTrialBalance(testWindow(), rows)

	require.Equal(t, tb.TotalDebit, tb.TotalCredit)
	require.Equal(t, int64(60000), tb.TotalDebit)

	var overdraft TrialBalanceRow
	for _, sec := range tb.Sections {
		for _, r := range sec.Rows {
			require.NotEqual(t, "9999", r.Code)
			if r.Code == "1010" {
				overdraft = r
			}
		}
	}
	require.Equal(t, int64(5000), overdraft.Credit)
	require.Zero(t, overdraft.Debit)
}

func TestBuildBalanceSheetBalances(t *testing.T) {
	asOf := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	rows := []AccountRow{
		row(1, "1000", "Cash", accounts.CategoryAsset, stCash, balances.Balance{Ending: 80000, Carried: true}),
		row(2, "1500", "Equipment", accounts.CategoryAsset, stRecv, balances.Balance{Ending: 40000, Carried: true}),
		row(3, "1590", "Accum. Depreciation", accounts.CategoryContraAsset, stDepr, balances.Balance{Ending: 10000, Carried: true}),
		row(4, "2000", "Payables", accounts.CategoryLiability, stPayab, balances.Balance{Ending: 30000, Carried: true}),
		row(5, "3000", "Capital", accounts.CategoryEquity, stEquity, balances.Balance{Ending: 55000, Carried: true}),
	}
	bs := BuildBalanceSheet(asOf, rows, 25000)

	// contra asset reduces the asset total
	require.Equal(t, int64(110000), bs.TotalAssets)
	require.Equal(t, int64(110000), bs.TotalLiabEquity)
	require.Equal(t, bs.TotalAssets, bs.TotalLiabEquity)
}

func TestBuildIncomeStatementGrossProfit(t *testing.T) {
	cogsKind := accounts.SystemCostOfGoodsSold
	cogsRow := row(3, "5000", "COGS", accounts.CategoryExpense, stCOGS, balances.Balance{Ending: 40000})
	cogsRow.Account.SystemKind = &cogsKind

	rows := []AccountRow{
		row(1, "4000", "Sales", accounts.CategoryRevenue, stRevenue, balances.Balance{Ending: 100000}),
		row(2, "4950", "Sales Discounts", accounts.CategoryContraRevenue, stRevenue, balances.Balance{Ending: 5000}),
		cogsRow,
		row(4, "5100", "Rent", accounts.CategoryExpense, stOpex, balances.Balance{Ending: 20000}),
	}
	pl := BuildIncomeStatement(testWindow(), rows)

	require.Equal(t, int64(95000), pl.Revenue.Total) // discounts net against revenue
	require.Equal(t, int64(40000), pl.CostOfGoodsSold.Total)
	require.Equal(t, int64(55000), pl.GrossProfit)
	require.Equal(t, int64(35000), pl.NetIncome)
}

func TestBuildCashFlowIdentity(t *testing.T) {
	rows := []AccountRow{
		row(1, "1000", "Checking", accounts.CategoryAsset, stCash, balances.Balance{Starting: 10000, Debit: 50000, Credit: 20000, Carried: true}),
		row(2, "2500", "Loan", accounts.CategoryLiability, stLoans, balances.Balance{Starting: 30000, Debit: 5000, Credit: 0, Carried: true}),
	}
	cf := BuildCashFlow(testWindow(), rows)

	require.Equal(t, cf.Ending, cf.Starting+cf.Inflows-cf.Outflows)
	for _, line := range cf.Lines {
		require.Equal(t, line.Ending, line.Starting+line.Inflows-line.Outflows)
	}
	// the loan reads as negative cash and paying it down counts as inflow
	require.Equal(t, int64(-30000), cf.Lines[1].Starting)
	require.Equal(t, int64(-25000), cf.Lines[1].Ending)
}

func TestBuildAgingBuckets(t *testing.T) {
	asOf := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	due := func(days int) time.Time { return asOf.AddDate(0, 0, -days) }
	docs := []documents.Document{
		{EntityID: 1, EntityName: "Acme", AmountDue: 1000, DueDate: due(-10)}, // not yet due
		{EntityID: 1, EntityName: "Acme", AmountDue: 2000, DueDate: due(15)},
		{EntityID: 2, EntityName: "Globex", AmountDue: 3000, DueDate: due(45)},
		{EntityID: 2, EntityName: "Globex", AmountDue: 4000, DueDate: due(120)},
		{EntityID: 3, EntityName: "Paid Up", AmountDue: 0, DueDate: due(200)},
	}
	ag := BuildAging(asOf, docs, 3, 30)

	require.Equal(t, []string{"Current", "1-30 Days", "31-60 Days", "61-90 Days", "Over 90 Days"}, ag.Labels)
	require.Len(t, ag.Rows, 2)
	require.Equal(t, []int64{1000, 2000, 0, 0, 0}, ag.Rows[0].Buckets)
	require.Equal(t, []int64{0, 0, 3000, 0, 4000}, ag.Rows[1].Buckets)
	require.Equal(t, int64(10000), ag.Total)
}

func TestBuildEntitySummaries(t *testing.T) {
	asOf := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	docs := []documents.Document{
		{EntityID: 1, Status: documents.StatusPaid, Total: 10000, AmountPaid: 10000},
		{EntityID: 1, Status: documents.StatusPartial, Total: 5000, AmountPaid: 2000, AmountDue: 3000, DueDate: asOf.AddDate(0, 0, -5)},
		{EntityID: 1, Status: documents.StatusDraft, Total: 99999},
		{EntityID: 2, Status: documents.StatusSent, Total: 7000, AmountDue: 7000, DueDate: asOf.AddDate(0, 0, 10)},
	}
	sums := BuildEntitySummaries(asOf, docs)

	require.Len(t, sums, 2)
	require.Equal(t, 2, sums[0].Documents) // draft excluded
	require.Equal(t, int64(15000), sums[0].Invoiced)
	require.Equal(t, int64(3000), sums[0].Overdue)
	require.Equal(t, int64(7000), sums[1].Open)
	require.Zero(t, sums[1].Overdue)
}
