package ledger

import "errors"

var (
	// ErrUnbalanced indicates total debits != total credits.
	ErrUnbalanced = errors.New("ledger: entries must balance")
	// ErrTooFewEntries indicates less than two entries.
	ErrTooFewEntries = errors.New("ledger: transaction requires at least two entries")
	// ErrNegativeAmount indicates a negative entry amount.
	ErrNegativeAmount = errors.New("ledger: entry amount must be non-negative")
	// ErrBothSides indicates an entry marked both debit and credit.
	ErrBothSides = errors.New("ledger: entry cannot be both debit and credit")
	// ErrMissingAccount indicates an entry without an account.
	ErrMissingAccount = errors.New("ledger: entry missing account")
	// ErrSourceAlreadyLinked indicates the source document already has
	// a transaction; used as the idempotency conflict signal.
	ErrSourceAlreadyLinked = errors.New("ledger: source already linked to a transaction")
	// ErrTransactionNotFound indicates a missing transaction.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")
)
