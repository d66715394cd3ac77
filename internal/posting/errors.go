package posting

import "errors"

var (
	// ErrNotPostable indicates a document in a state that cannot reach
	// the ledger, such as a void or estimate document.
	ErrNotPostable = errors.New("posting: document not postable")
	// ErrNoRate indicates no exchange rate exists for a conversion.
	ErrNoRate = errors.New("posting: exchange rate unavailable")
	// ErrZeroPayment indicates a payment of zero cents.
	ErrZeroPayment = errors.New("posting: payment amount must be positive")
	// ErrNothingOutstanding indicates a bulk payment found no document
	// with a balance to apply against.
	ErrNothingOutstanding = errors.New("posting: nothing outstanding")
)
