package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerops/recon_app/internal/core/domain"
	portsrepo "github.com/ledgerops/recon_app/internal/core/ports/repositories"
)

// MatchCandidate is the transient result of a ledger search: the counterpart
// entry, its transaction, and how many days it lies after the target date.
type MatchCandidate struct {
	Entry        domain.Entry
	Transaction  *domain.Transaction
	DistanceDays int
}

// EntryMatcher searches existing ledger entries for the unmatched counterpart
// of a newly-parsed transaction leg.
type EntryMatcher struct {
	reader portsrepo.LedgerReader
}

// NewEntryMatcher creates a matcher over the given ledger view (typically the
// import run's draft, so earlier results of the same batch are visible).
func NewEntryMatcher(reader portsrepo.LedgerReader) *EntryMatcher {
	return &EntryMatcher{reader: reader}
}

// FindMatch searches entries of the account whose transaction date lies within
// [date, date+windowDays] — forward-only, because vendor charges typically
// post after the feed's nominal date — and whose amount equals -expected,
// since matching always happens between the two sides of the same real-world
// movement. Entries already carrying an external unique id or a statement
// reference are excluded unconditionally, as are candidates whose transaction
// has already been split into more than two entries. The exclude predicate
// lets a caller add source-specific exclusions and may be nil.
//
// When several candidates qualify, the smallest day distance wins, then the
// lowest entry id; iteration order never decides a match.
//
// Returns nil (and no error) when nothing matches.
func (m *EntryMatcher) FindMatch(ctx context.Context, accountID string, expected domain.Amount, date time.Time, windowDays int, exclude func(domain.Entry) bool) (*MatchCandidate, error) {
	to := date.AddDate(0, 0, windowDays)
	entries, err := m.reader.EntriesInDateRange(ctx, accountID, date, to)
	if err != nil {
		return nil, fmt.Errorf("searching entries for account %s: %w", accountID, err)
	}

	var best *MatchCandidate
	for _, e := range entries {
		if e.Amount != -expected {
			continue
		}
		if e.Reconciled() {
			continue
		}
		if exclude != nil && exclude(e) {
			continue
		}
		t, err := m.reader.FindTransactionByID(ctx, e.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("loading transaction %s for candidate entry %s: %w", e.TransactionID, e.EntryID, err)
		}
		if len(t.Entries) > 2 {
			continue
		}
		distance := daysBetween(date, t.Date)
		if distance < 0 || distance > windowDays {
			continue
		}
		if best == nil || distance < best.DistanceDays ||
			(distance == best.DistanceDays && e.EntryID < best.Entry.EntryID) {
			best = &MatchCandidate{Entry: e, Transaction: t, DistanceDays: distance}
		}
	}
	return best, nil
}

// FindMovement reports an entry of the account carrying the given amount
// whose transaction date lies within windowDays on either side of date,
// regardless of how detailed its transaction already is. Bank downloads use it
// to recognize movements the ledger already knows — a placeholder from an
// earlier download or a fully detailed feed import — before posting a new
// placeholder. Ties resolve to the smallest absolute day distance, then the
// lowest entry id.
//
// Returns nil (and no error) when the movement is unknown.
func (m *EntryMatcher) FindMovement(ctx context.Context, accountID string, amount domain.Amount, date time.Time, windowDays int) (*MatchCandidate, error) {
	from := date.AddDate(0, 0, -windowDays)
	to := date.AddDate(0, 0, windowDays)
	entries, err := m.reader.EntriesInDateRange(ctx, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("searching entries for account %s: %w", accountID, err)
	}

	var best *MatchCandidate
	for _, e := range entries {
		if e.Amount != amount {
			continue
		}
		t, err := m.reader.FindTransactionByID(ctx, e.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("loading transaction %s for candidate entry %s: %w", e.TransactionID, e.EntryID, err)
		}
		distance := daysBetween(date, t.Date)
		if distance < 0 {
			distance = -distance
		}
		if distance > windowDays {
			continue
		}
		if best == nil || distance < best.DistanceDays ||
			(distance == best.DistanceDays && e.EntryID < best.Entry.EntryID) {
			best = &MatchCandidate{Entry: e, Transaction: t, DistanceDays: distance}
		}
	}
	return best, nil
}

// daysBetween returns the whole days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
