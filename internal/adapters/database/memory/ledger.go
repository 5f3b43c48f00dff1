// Package memory provides an in-memory ledger adapter. It backs unit tests
// and the CLI's dry-run mode with the same query/draft contract the pgsql
// adapter implements against Postgres.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	portsrepo "github.com/ledgerops/recon_app/internal/core/ports/repositories"
)

// Ledger is an in-memory ledger. Transactions keep their insertion order so
// queries return stable, reproducible results.
type Ledger struct {
	mu        sync.Mutex
	accounts  map[string]domain.Account
	txns      map[string]*domain.Transaction
	order     []string
	labels    []string
	draftOpen bool
}

var _ portsrepo.LedgerRepository = (*Ledger)(nil)

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[string]domain.Account),
		txns:     make(map[string]*domain.Transaction),
	}
}

// AddAccount registers an account.
func (l *Ledger) AddAccount(a domain.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[a.AccountID] = a
}

// SeedTransaction inserts a transaction directly into the committed ledger,
// bypassing the draft mechanism. Intended for test fixtures and base data.
func (l *Ledger) SeedTransaction(t *domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.txns[t.TransactionID]; !exists {
		l.order = append(l.order, t.TransactionID)
	}
	l.txns[t.TransactionID] = t.Clone()
}

// CommittedLabels returns the labels of committed batches, in commit order.
func (l *Ledger) CommittedLabels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.labels))
	copy(out, l.labels)
	return out
}

func (l *Ledger) EntriesInDateRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return entriesInDateRange(l.txns, l.order, accountID, from, to), nil
}

func (l *Ledger) EntriesWithOrderNumber(ctx context.Context, orderNumber string) ([]domain.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return entriesWithOrderNumber(l.txns, l.order, orderNumber), nil
}

func (l *Ledger) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return findTransaction(l.txns, transactionID)
}

func (l *Ledger) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return &a, nil
}

func (l *Ledger) EntryExistsWithUniqueID(ctx context.Context, uniqueID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return entryExistsWithUniqueID(l.txns, uniqueID), nil
}

// BeginDraft opens a copy-on-write overlay. Only one draft may be open at a
// time; a second BeginDraft before commit or discard fails with ErrDraftOpen.
func (l *Ledger) BeginDraft(ctx context.Context) (portsrepo.Draft, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.draftOpen {
		return nil, apperrors.ErrDraftOpen
	}
	l.draftOpen = true

	d := &draft{
		base: l,
		txns: make(map[string]*domain.Transaction, len(l.txns)),
	}
	for id, t := range l.txns {
		d.txns[id] = t.Clone()
	}
	d.order = make([]string, len(l.order))
	copy(d.order, l.order)
	return d, nil
}

// draft is the speculative overlay. All reads see the overlay; nothing touches
// the base ledger until Commit.
type draft struct {
	base   *Ledger
	txns   map[string]*domain.Transaction
	order  []string
	closed bool
}

var _ portsrepo.Draft = (*draft)(nil)

func (d *draft) EntriesInDateRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.Entry, error) {
	return entriesInDateRange(d.txns, d.order, accountID, from, to), nil
}

func (d *draft) EntriesWithOrderNumber(ctx context.Context, orderNumber string) ([]domain.Entry, error) {
	return entriesWithOrderNumber(d.txns, d.order, orderNumber), nil
}

func (d *draft) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return findTransaction(d.txns, transactionID)
}

func (d *draft) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return d.base.FindAccountByID(ctx, accountID)
}

func (d *draft) EntryExistsWithUniqueID(ctx context.Context, uniqueID string) (bool, error) {
	return entryExistsWithUniqueID(d.txns, uniqueID), nil
}

func (d *draft) SaveTransaction(ctx context.Context, t *domain.Transaction) error {
	if d.closed {
		return fmt.Errorf("save on a closed draft")
	}
	if _, exists := d.txns[t.TransactionID]; !exists {
		d.order = append(d.order, t.TransactionID)
	}
	d.txns[t.TransactionID] = t.Clone()
	return nil
}

func (d *draft) DeleteTransaction(ctx context.Context, transactionID string) error {
	if d.closed {
		return fmt.Errorf("delete on a closed draft")
	}
	if _, exists := d.txns[transactionID]; !exists {
		return nil
	}
	delete(d.txns, transactionID)
	for i, id := range d.order {
		if id == transactionID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

func (d *draft) Commit(ctx context.Context, label string) error {
	if d.closed {
		return fmt.Errorf("commit on a closed draft")
	}
	d.base.mu.Lock()
	defer d.base.mu.Unlock()
	d.base.txns = d.txns
	d.base.order = d.order
	d.base.labels = append(d.base.labels, label)
	d.base.draftOpen = false
	d.closed = true
	return nil
}

func (d *draft) Discard(ctx context.Context) error {
	if d.closed {
		return nil
	}
	d.base.mu.Lock()
	defer d.base.mu.Unlock()
	d.base.draftOpen = false
	d.closed = true
	return nil
}

func sameOrAfterDay(t, ref time.Time) bool {
	td := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	rd := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return !td.Before(rd)
}

func entriesInDateRange(txns map[string]*domain.Transaction, order []string, accountID string, from, to time.Time) []domain.Entry {
	var out []domain.Entry
	for _, id := range order {
		t := txns[id]
		if !sameOrAfterDay(t.Date, from) || !sameOrAfterDay(to, t.Date) {
			continue
		}
		for _, e := range t.Entries {
			if e.AccountID == accountID {
				out = append(out, e)
			}
		}
	}
	return out
}

func entriesWithOrderNumber(txns map[string]*domain.Transaction, order []string, orderNumber string) []domain.Entry {
	var out []domain.Entry
	for _, id := range order {
		for _, e := range txns[id].Entries {
			if e.OrderNumber == orderNumber {
				out = append(out, e)
			}
		}
	}
	return out
}

func findTransaction(txns map[string]*domain.Transaction, transactionID string) (*domain.Transaction, error) {
	t, ok := txns[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	return t.Clone(), nil
}

func entryExistsWithUniqueID(txns map[string]*domain.Transaction, uniqueID string) bool {
	for _, t := range txns {
		for _, e := range t.Entries {
			if e.UniqueID != "" && e.UniqueID == uniqueID {
				return true
			}
		}
	}
	return false
}
