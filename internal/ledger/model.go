package ledger

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies the economic event.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionJournal    TransactionType = "JOURNAL"
)

// EntryType is the side of a journal entry.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// SourceKind discriminates the document a transaction was posted from.
// A tagged enum plus uuid replaces the source's polymorphic morph map.
type SourceKind string

const (
	SourceNone    SourceKind = "NONE"
	SourceInvoice SourceKind = "INVOICE"
	SourceBill    SourceKind = "BILL"
	SourceBank    SourceKind = "BANK"
	SourcePayment SourceKind = "PAYMENT"
)

// Transaction is one balanced economic event. Amount is an
// informational copy of the balanced total in company currency cents.
type Transaction struct {
	ID          int64
	CompanyID   int64
	Type        TransactionType
	PostedAt    time.Time
	Amount      int64
	Currency    string
	Description string
	SourceKind  SourceKind
	SourceID    uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Entries     []Entry
}

// Entry is a single debit or credit against one account. Amounts are
// non-negative cents in the company default currency.
type Entry struct {
	ID            int64
	TransactionID int64
	AccountID     int64
	Type          EntryType
	Amount        int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Balanced reports whether the entries net to zero.
func Balanced(entries []Entry) bool {
	var debit, credit int64
	for _, e := range entries {
		switch e.Type {
		case EntryDebit:
			debit += e.Amount
		case EntryCredit:
			credit += e.Amount
		}
	}
	return debit == credit
}
