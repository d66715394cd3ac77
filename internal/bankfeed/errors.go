package bankfeed

import "errors"

var (
	// ErrFeedUnavailable indicates the upstream bank feed could not be
	// reached; already-imported lines are unaffected.
	ErrFeedUnavailable = errors.New("bankfeed: feed unavailable")
	// ErrLineNotFound indicates a missing feed line.
	ErrLineNotFound = errors.New("bankfeed: feed line not found")
	// ErrAlreadyCategorized indicates the line's ledger transaction
	// already carries journal entries.
	ErrAlreadyCategorized = errors.New("bankfeed: line already categorized")
)
