package bankfeed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RawTransaction is one bank feed line before categorization. Amount
// is signed cents in the bank account's currency: positive for money
// in, negative for money out.
type RawTransaction struct {
	ID            int64
	CompanyID     int64
	BankAccountID int64
	SourceID      uuid.UUID
	PostedAt      time.Time
	Amount        int64
	Currency      string
	Description   string
	Reference     string
	// TransactionID links the entry-less ledger transaction created at
	// intake; it gains its journal entries at categorization.
	TransactionID int64
	Categorized   bool
	CreatedAt     time.Time
}

// Fingerprint identifies a feed line for import deduplication. Two
// lines with the same account, date, amount, and reference are the
// same line no matter how often the feed window overlaps.
func (r RawTransaction) Fingerprint() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%d|%s|%s",
		r.BankAccountID, r.PostedAt.UTC().Format("2006-01-02"), r.Amount, r.Reference, r.Description)))
	return hex.EncodeToString(h[:])
}

// Deposit reports whether the line brought money into the account.
func (r RawTransaction) Deposit() bool { return r.Amount >= 0 }
