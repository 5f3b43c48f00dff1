package services

import (
	"context"
	"fmt"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	portsrepo "github.com/ledgerops/recon_app/internal/core/ports/repositories"
)

// TransactionMerger combines a newly-parsed half-transaction with the matched
// existing transaction. The operation is destructive and irreversible at the
// point of entry deletion; callers must have validated both halves before
// invoking Merge. All mutations go through the import run's draft.
type TransactionMerger struct {
	draft portsrepo.Draft
}

// NewTransactionMerger creates a merger writing into the given draft.
func NewTransactionMerger(draft portsrepo.Draft) *TransactionMerger {
	return &TransactionMerger{draft: draft}
}

// Merge folds newHalf into the matched transaction:
//
//  1. A matched transaction that already has more than two entries is never
//     auto-merged; the caller gets ErrMergeConflict and must leave both
//     transactions standing for manual resolution.
//  2. The merged transaction keeps the earlier of the two dates.
//  3. The matched transaction's placeholder "other leg" — the economic
//     opposite of the entry we are keeping — is deleted.
//  4. Every entry of newHalf except the anchor (the leg the match was found
//     for) is copied into the matched transaction.
//  5. The newHalf container is deleted from the draft.
//
// A non-zero sum after the merge means the two halves disagreed in amount
// despite the matcher's equality check; that is an internal-consistency error
// and is returned as fatal, never silently ignored.
func (m *TransactionMerger) Merge(ctx context.Context, newHalf *domain.Transaction, anchorEntryID string, matched *MatchCandidate) (*domain.Transaction, error) {
	target := matched.Transaction
	if len(target.Entries) > 2 {
		return nil, fmt.Errorf("%w: transaction %s has %d entries",
			apperrors.ErrMergeConflict, target.TransactionID, len(target.Entries))
	}
	anchor := newHalf.EntryByID(anchorEntryID)
	if anchor == nil {
		return nil, fmt.Errorf("anchor entry %s not found in transaction %s", anchorEntryID, newHalf.TransactionID)
	}

	merged := target.Clone()
	merged.Date = domain.EarlierDate(newHalf.Date, target.Date)

	for _, e := range target.Entries {
		if e.EntryID != matched.Entry.EntryID {
			merged.RemoveEntry(e.EntryID)
		}
	}

	// The matched entry may carry identifying marks only the feed knows.
	if kept := merged.EntryByID(matched.Entry.EntryID); kept != nil {
		if kept.UniqueID == "" {
			kept.UniqueID = anchor.UniqueID
		}
		if kept.OrderNumber == "" {
			kept.OrderNumber = anchor.OrderNumber
		}
		if kept.Memo == "" {
			kept.Memo = anchor.Memo
		}
	}

	for _, e := range newHalf.Entries {
		if e.EntryID == anchorEntryID {
			continue
		}
		merged.AddEntry(e)
	}

	if err := ValidateTransaction(merged); err != nil {
		return nil, fmt.Errorf("internal consistency: merge of %s into %s produced an invalid transaction: %w",
			newHalf.TransactionID, target.TransactionID, err)
	}

	if err := m.draft.DeleteTransaction(ctx, newHalf.TransactionID); err != nil {
		return nil, fmt.Errorf("deleting merged-away transaction %s: %w", newHalf.TransactionID, err)
	}
	if err := m.draft.SaveTransaction(ctx, merged); err != nil {
		return nil, fmt.Errorf("saving merged transaction %s: %w", merged.TransactionID, err)
	}
	return merged, nil
}
