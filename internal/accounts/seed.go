package accounts

import (
	"context"
	"fmt"
)

type seedSubtype struct {
	Category        Category
	Name            string
	MultiCurrency   bool
	InverseCashFlow bool
}

type seedAccount struct {
	Subtype    string
	Category   Category
	Code       string
	Name       string
	SystemKind SystemAccountKind
}

var defaultSubtypes = []seedSubtype{
	{Category: CategoryAsset, Name: CashSubtypeName, MultiCurrency: true},
	{Category: CategoryAsset, Name: "Receivables"},
	{Category: CategoryAsset, Name: "Other Current Assets"},
	{Category: CategoryContraAsset, Name: "Accumulated Depreciation"},
	{Category: CategoryLiability, Name: "Payables"},
	{Category: CategoryLiability, Name: "Tax Liabilities"},
	{Category: CategoryLiability, Name: "Loans Payable", InverseCashFlow: true},
	{Category: CategoryEquity, Name: "Owner Equity"},
	{Category: CategoryRevenue, Name: "Operating Revenue"},
	{Category: CategoryContraRevenue, Name: "Sales Discounts"},
	{Category: CategoryExpense, Name: "Cost of Goods Sold"},
	{Category: CategoryExpense, Name: "Operating Expenses"},
	{Category: CategoryContraExpense, Name: "Purchase Discounts"},
}

var defaultAccounts = []seedAccount{
	{Subtype: CashSubtypeName, Category: CategoryAsset, Code: "1000", Name: "Cash on Hand"},
	{Subtype: "Receivables", Category: CategoryAsset, Code: "1200", Name: "Accounts Receivable", SystemKind: SystemAccountsReceivable},
	{Subtype: "Other Current Assets", Category: CategoryAsset, Code: "1400", Name: "Purchase Tax Recoverable", SystemKind: SystemPurchaseTax},
	{Subtype: "Payables", Category: CategoryLiability, Code: "2000", Name: "Accounts Payable", SystemKind: SystemAccountsPayable},
	{Subtype: "Tax Liabilities", Category: CategoryLiability, Code: "2100", Name: "Sales Tax Payable", SystemKind: SystemSalesTax},
	{Subtype: "Owner Equity", Category: CategoryEquity, Code: "3000", Name: "Owner Capital", SystemKind: SystemOwnerCapital},
	{Subtype: "Owner Equity", Category: CategoryEquity, Code: "3900", Name: "Retained Earnings", SystemKind: SystemRetainedEarnings},
	{Subtype: "Operating Revenue", Category: CategoryRevenue, Code: "4000", Name: "Sales Revenue"},
	{Subtype: "Operating Revenue", Category: CategoryRevenue, Code: "4900", Name: "Uncategorized Income", SystemKind: SystemUncategorizedIncome},
	{Subtype: "Sales Discounts", Category: CategoryContraRevenue, Code: "4950", Name: "Sales Discount", SystemKind: SystemSalesDiscount},
	{Subtype: "Cost of Goods Sold", Category: CategoryExpense, Code: "5000", Name: "Cost of Goods Sold", SystemKind: SystemCostOfGoodsSold},
	{Subtype: "Operating Expenses", Category: CategoryExpense, Code: "5100", Name: "General and Administrative"},
	{Subtype: "Operating Expenses", Category: CategoryExpense, Code: "5900", Name: "Uncategorized Expense", SystemKind: SystemUncategorizedExpense},
	{Subtype: "Purchase Discounts", Category: CategoryContraExpense, Code: "5950", Name: "Purchase Discount", SystemKind: SystemPurchaseDiscount},
	{Subtype: "Operating Revenue", Category: CategoryRevenue, Code: "4800", Name: "Gain/Loss on Exchange", SystemKind: SystemGainLossOnExchange},
}

// SeedDefaultChart creates the default subtypes and accounts for a new
// company. The posting engine assumes every SystemAccountKind listed
// here resolves afterwards; skipping this step leaves the company in a
// state where every posting fails with ErrChartNotSeeded.
func (s *Service) SeedDefaultChart(ctx context.Context, companyID int64, currency string) error {
	subtypeIDs := make(map[string]int64, len(defaultSubtypes))
	for _, st := range defaultSubtypes {
		created, err := s.repo.InsertSubtype(ctx, Subtype{
			CompanyID:       companyID,
			Category:        st.Category,
			Name:            st.Name,
			MultiCurrency:   st.MultiCurrency,
			InverseCashFlow: st.InverseCashFlow,
		})
		if err != nil {
			return fmt.Errorf("seed subtype %s: %w", st.Name, err)
		}
		subtypeIDs[st.Name] = created.ID
	}
	for _, sa := range defaultAccounts {
		account := Account{
			CompanyID:       companyID,
			SubtypeID:       subtypeIDs[sa.Subtype],
			Category:        sa.Category,
			Code:            sa.Code,
			Name:            sa.Name,
			CurrencyCode:    currency,
			AccountableKind: AccountableNone,
		}
		if sa.SystemKind != "" {
			kind := sa.SystemKind
			account.SystemKind = &kind
		}
		if _, err := s.repo.Insert(ctx, account); err != nil {
			return fmt.Errorf("seed account %s: %w", sa.Code, err)
		}
	}
	return nil
}
