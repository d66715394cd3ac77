package accounts

import "errors"

var (
	// ErrAccountNotFound indicates an unknown account id for the company.
	ErrAccountNotFound = errors.New("accounts: account not found")
	// ErrSubtypeNotFound indicates an unknown subtype id.
	ErrSubtypeNotFound = errors.New("accounts: subtype not found")
	// ErrChartNotSeeded indicates a required system account is missing.
	// This is a configuration fault, not a recoverable condition.
	ErrChartNotSeeded = errors.New("accounts: chart of accounts not seeded")
	// ErrParentCycle indicates a parent assignment would form a cycle.
	ErrParentCycle = errors.New("accounts: parent chain would include the account itself")
	// ErrParentCategoryMismatch indicates a parent from another category.
	ErrParentCategoryMismatch = errors.New("accounts: parent must share the account category")
	// ErrAccountInUse indicates the account has journal entries and
	// cannot be removed without breaking ledger integrity.
	ErrAccountInUse = errors.New("accounts: account has journal entries")
	// ErrDuplicateCode indicates the company already uses this code.
	ErrDuplicateCode = errors.New("accounts: duplicate account code")
)
