package accounts

import "time"

// Category enumerates chart-of-accounts categories, including contra
// variants that carry the opposite normal balance of their base type.
type Category string

const (
	CategoryAsset           Category = "ASSET"
	CategoryContraAsset     Category = "CONTRA_ASSET"
	CategoryLiability       Category = "LIABILITY"
	CategoryContraLiability Category = "CONTRA_LIABILITY"
	CategoryEquity          Category = "EQUITY"
	CategoryContraEquity    Category = "CONTRA_EQUITY"
	CategoryRevenue         Category = "REVENUE"
	CategoryContraRevenue   Category = "CONTRA_REVENUE"
	CategoryExpense         Category = "EXPENSE"
	CategoryContraExpense   Category = "CONTRA_EXPENSE"
)

// BalanceSide is the debit/credit side that increases an account.
type BalanceSide string

const (
	SideDebit  BalanceSide = "DEBIT"
	SideCredit BalanceSide = "CREDIT"
)

// NormalBalance returns the side that increases the category.
func (c Category) NormalBalance() BalanceSide {
	switch c {
	case CategoryAsset, CategoryExpense, CategoryContraLiability, CategoryContraEquity, CategoryContraRevenue:
		return SideDebit
	default:
		return SideCredit
	}
}

// Base strips the contra variant down to its underlying category.
func (c Category) Base() Category {
	switch c {
	case CategoryContraAsset:
		return CategoryAsset
	case CategoryContraLiability:
		return CategoryLiability
	case CategoryContraEquity:
		return CategoryEquity
	case CategoryContraRevenue:
		return CategoryRevenue
	case CategoryContraExpense:
		return CategoryExpense
	default:
		return c
	}
}

// IsReal reports whether balances carry forward across periods.
func (c Category) IsReal() bool {
	switch c.Base() {
	case CategoryAsset, CategoryLiability, CategoryEquity:
		return true
	default:
		return false
	}
}

// IsNominal reports whether the category resets each period.
func (c Category) IsNominal() bool { return !c.IsReal() }

// Label returns the presentation name used by report headers.
func (c Category) Label() string {
	switch c.Base() {
	case CategoryAsset:
		return "Assets"
	case CategoryLiability:
		return "Liabilities"
	case CategoryEquity:
		return "Equity"
	case CategoryRevenue:
		return "Revenue"
	case CategoryExpense:
		return "Expenses"
	default:
		return string(c)
	}
}

// ReportOrder is the fixed category ordering every report uses.
var ReportOrder = []Category{
	CategoryAsset,
	CategoryLiability,
	CategoryEquity,
	CategoryRevenue,
	CategoryExpense,
}

// AccountableKind discriminates the optional link from an account to
// the record it fronts. An explicit enum instead of a morph string.
type AccountableKind string

const (
	AccountableNone        AccountableKind = "NONE"
	AccountableBankAccount AccountableKind = "BANK_ACCOUNT"
)

// SystemAccountKind names accounts the posting engine resolves by role
// rather than by id. They are seeded with the default chart.
type SystemAccountKind string

const (
	SystemAccountsReceivable    SystemAccountKind = "ACCOUNTS_RECEIVABLE"
	SystemAccountsPayable       SystemAccountKind = "ACCOUNTS_PAYABLE"
	SystemSalesTax              SystemAccountKind = "SALES_TAX_PAYABLE"
	SystemPurchaseTax           SystemAccountKind = "PURCHASE_TAX_RECOVERABLE"
	SystemSalesDiscount         SystemAccountKind = "SALES_DISCOUNT"
	SystemPurchaseDiscount      SystemAccountKind = "PURCHASE_DISCOUNT"
	SystemUncategorizedIncome   SystemAccountKind = "UNCATEGORIZED_INCOME"
	SystemUncategorizedExpense  SystemAccountKind = "UNCATEGORIZED_EXPENSE"
	SystemGainLossOnExchange    SystemAccountKind = "GAIN_LOSS_ON_EXCHANGE"
	SystemRetainedEarnings      SystemAccountKind = "RETAINED_EARNINGS"
	SystemOwnerCapital          SystemAccountKind = "OWNER_CAPITAL"
	SystemCostOfGoodsSold       SystemAccountKind = "COST_OF_GOODS_SOLD"
	SystemUncategorizedTransfer SystemAccountKind = "UNCATEGORIZED_TRANSFER"
)

// CashSubtypeName is the seeded subtype whose accounts count as cash
// on hand for the cash flow report, alongside linked bank accounts.
const CashSubtypeName = "Cash and Cash Equivalents"

// Subtype groups accounts inside a category for report hierarchy.
type Subtype struct {
	ID              int64
	CompanyID       int64
	Category        Category
	Name            string
	MultiCurrency   bool
	InverseCashFlow bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Account is a chart-of-accounts node.
type Account struct {
	ID              int64
	CompanyID       int64
	SubtypeID       int64
	Category        Category
	Code            string
	Name            string
	CurrencyCode    string
	ParentID        *int64
	AccountableKind AccountableKind
	AccountableID   *int64
	SystemKind      *SystemAccountKind
	Archived        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsBankAccount reports whether this account fronts a bank account.
func (a Account) IsBankAccount() bool {
	return a.AccountableKind == AccountableBankAccount
}
