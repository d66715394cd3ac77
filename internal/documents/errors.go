package documents

import "errors"

var (
	// ErrDocumentNotFound indicates a missing document.
	ErrDocumentNotFound = errors.New("documents: document not found")
	// ErrAdjustmentNotFound indicates a line references an unknown
	// tax/discount rule.
	ErrAdjustmentNotFound = errors.New("documents: adjustment not found")
	// ErrInvalidStatus indicates an operation illegal in the current state.
	ErrInvalidStatus = errors.New("documents: invalid status for operation")
	// ErrNoLineItems indicates a document without lines cannot post.
	ErrNoLineItems = errors.New("documents: document has no line items")
	// ErrNegativeQuantity indicates a line with quantity below zero.
	ErrNegativeQuantity = errors.New("documents: negative quantity")
	// ErrCurrencyInvalid indicates a malformed currency code.
	ErrCurrencyInvalid = errors.New("documents: invalid currency code")
)
