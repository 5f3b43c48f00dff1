package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDraftOpen indicates that a draft is already held by another import run.
var ErrDraftOpen = errors.New("a draft is already open for this ledger")

// Import error taxonomy. Every error produced while reconciling a batch wraps
// exactly one of these sentinels so callers can classify with errors.Is.
var (
	// ErrParse indicates a row that does not fit the expected multi-row grammar.
	ErrParse = errors.New("row does not fit the expected multi-row grammar")

	// ErrUnbalanced indicates a transaction whose entries do not sum to zero.
	ErrUnbalanced = errors.New("transaction entries do not sum to zero")

	// ErrOrderTotalMismatch indicates an order whose declared total disagrees
	// with the sum of its non-return shipment charges.
	ErrOrderTotalMismatch = errors.New("order total does not match shipment charges")

	// ErrAmountMismatch indicates an attempt to re-set a write-once sub-amount
	// (postage, giftcard, promotion) to a different value.
	ErrAmountMismatch = errors.New("amount already determined with a different value")

	// ErrUnsupportedData indicates an unrecognized row type, currency or status
	// string. The importer never guesses.
	ErrUnsupportedData = errors.New("unsupported data")

	// ErrMergeConflict indicates that a matched transaction has already been
	// split into more than two entries and cannot be auto-merged.
	ErrMergeConflict = errors.New("matched transaction already has more than two entries")

	// ErrMissingAccount indicates an entry without an account reference.
	ErrMissingAccount = errors.New("entry has no account")

	// ErrZeroAmount indicates an entry carrying a zero amount. Zero movements
	// are almost always a parsing bug and are rejected outright.
	ErrZeroAmount = errors.New("entry amount is zero")
)

// RowError attaches source context to an import error so the caller can show
// the user exactly which row or order produced it.
type RowError struct {
	Line        int    // 1-based source line, 0 when not row-scoped
	OrderNumber string // external order number, "" when not order-scoped
	Err         error
}

func (e RowError) Error() string {
	switch {
	case e.OrderNumber != "" && e.Line > 0:
		return fmt.Sprintf("order %s (line %d): %v", e.OrderNumber, e.Line, e.Err)
	case e.OrderNumber != "":
		return fmt.Sprintf("order %s: %v", e.OrderNumber, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e RowError) Unwrap() error {
	return e.Err
}

// BatchError aggregates every problem found during one import run, so a single
// pass can surface as many data-quality issues as possible instead of stopping
// at the first one.
type BatchError struct {
	Rows []RowError
}

func (e *BatchError) Error() string {
	if len(e.Rows) == 1 {
		return e.Rows[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors in import batch:", len(e.Rows))
	for _, r := range e.Rows {
		b.WriteString("\n\t")
		b.WriteString(r.Error())
	}
	return b.String()
}

// Add records an error with row context. Nil errors are ignored.
func (e *BatchError) Add(line int, orderNumber string, err error) {
	if err == nil {
		return
	}
	e.Rows = append(e.Rows, RowError{Line: line, OrderNumber: orderNumber, Err: err})
}

// HasErrors reports whether any error has been recorded.
func (e *BatchError) HasErrors() bool {
	return len(e.Rows) > 0
}

// HasFatal reports whether any recorded error is batch-fatal. Merge conflicts
// are the only non-fatal kind: the affected transaction is left unmerged for
// manual resolution, but the rest of the batch may still commit.
func (e *BatchError) HasFatal() bool {
	for _, r := range e.Rows {
		if !errors.Is(r.Err, ErrMergeConflict) {
			return true
		}
	}
	return false
}

// OrNil returns the aggregate as an error, or nil when empty.
func (e *BatchError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
