package repositories

import (
	"context"
	"time"

	"github.com/ledgerops/recon_app/internal/core/domain"
)

// LedgerReader is the query capability the reconciliation core needs from the
// persistence layer. Implementations may back it with an index or a linear
// scan; results must come back in a stable order (transaction insertion order,
// entries in transaction order).
type LedgerReader interface {
	// EntriesInDateRange returns entries posted to the account whose
	// transaction date lies within [from, to], both inclusive.
	EntriesInDateRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.Entry, error)

	// EntriesWithOrderNumber returns entries tagged with the external order number.
	EntriesWithOrderNumber(ctx context.Context, orderNumber string) ([]domain.Entry, error)

	// FindTransactionByID returns the transaction with its entries, or
	// apperrors.ErrNotFound.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindAccountByID returns the account, or apperrors.ErrNotFound.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// EntryExistsWithUniqueID reports whether any entry already carries the
	// given external unique id. Used to skip rows that were fully imported by
	// an earlier run.
	EntryExistsWithUniqueID(ctx context.Context, uniqueID string) (bool, error)
}

// Draft is an isolated, speculative overlay of the ledger. All mutations of an
// import batch happen against a draft; nothing is visible to other readers
// until Commit. Discard throws the whole overlay away atomically — partial
// imports are never left half-applied. Discard after a successful Commit is a
// no-op, so callers can defer it unconditionally.
type Draft interface {
	LedgerReader

	// SaveTransaction inserts the transaction or replaces it wholesale,
	// entries included.
	SaveTransaction(ctx context.Context, t *domain.Transaction) error

	// DeleteTransaction removes the transaction and its entries. Deleting a
	// transaction that was never saved is a no-op.
	DeleteTransaction(ctx context.Context, transactionID string) error

	// Commit makes the overlay visible, all-or-nothing, recording the batch label.
	Commit(ctx context.Context, label string) error

	// Discard drops the overlay.
	Discard(ctx context.Context) error
}

// LedgerRepository is the full persistence contract: queries against the
// committed ledger plus the ability to open a draft. Only one draft owner is
// allowed at a time.
type LedgerRepository interface {
	LedgerReader
	BeginDraft(ctx context.Context) (Draft, error)
}
