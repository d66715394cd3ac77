package ledger

import (
	"time"

	"github.com/google/uuid"
)

// EntryInput describes one line of a posting request.
type EntryInput struct {
	AccountID int64
	Type      EntryType
	Amount    int64
}

// PostingInput groups the fields required to post a transaction.
type PostingInput struct {
	CompanyID   int64
	Type        TransactionType
	PostedAt    time.Time
	Currency    string
	Description string
	SourceKind  SourceKind
	SourceID    uuid.UUID
	Entries     []EntryInput
}

// Validate rejects inputs that would break the balance invariant
// before anything touches the store.
func (in PostingInput) Validate() error {
	if len(in.Entries) < 2 {
		return ErrTooFewEntries
	}
	var debit, credit int64
	for _, e := range in.Entries {
		if e.AccountID == 0 {
			return ErrMissingAccount
		}
		if e.Amount < 0 {
			return ErrNegativeAmount
		}
		switch e.Type {
		case EntryDebit:
			debit += e.Amount
		case EntryCredit:
			credit += e.Amount
		default:
			return ErrBothSides
		}
	}
	if debit != credit {
		return ErrUnbalanced
	}
	return nil
}

// Total returns the balanced total (sum of one side) in cents.
func (in PostingInput) Total() int64 {
	var debit int64
	for _, e := range in.Entries {
		if e.Type == EntryDebit {
			debit += e.Amount
		}
	}
	return debit
}
