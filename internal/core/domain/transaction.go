package domain

import "time"

// Transaction is an ordered set of entries sharing one date. Every transaction
// must sum to zero at each observable boundary; the validator enforces this,
// the type itself only provides the bookkeeping.
type Transaction struct {
	TransactionID string    `json:"transactionID"`
	Date          time.Time `json:"date"`
	Entries       []Entry   `json:"entries"`
}

// Sum returns the signed sum of all entry amounts.
func (t *Transaction) Sum() Amount {
	var total Amount
	for _, e := range t.Entries {
		total += e.Amount
	}
	return total
}

// AddEntry appends an entry, re-parenting it to this transaction.
func (t *Transaction) AddEntry(e Entry) {
	e.TransactionID = t.TransactionID
	t.Entries = append(t.Entries, e)
}

// RemoveEntry deletes the entry with the given id, preserving the order of the
// remaining entries. It reports whether an entry was removed.
func (t *Transaction) RemoveEntry(entryID string) bool {
	for i, e := range t.Entries {
		if e.EntryID == entryID {
			t.Entries = append(t.Entries[:i], t.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// EntryByID returns a pointer to the entry with the given id, or nil.
func (t *Transaction) EntryByID(entryID string) *Entry {
	for i := range t.Entries {
		if t.Entries[i].EntryID == entryID {
			return &t.Entries[i]
		}
	}
	return nil
}

// EntriesForAccount returns the entries posted to the given account, in order.
func (t *Transaction) EntriesForAccount(accountID string) []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy. Drafts hand out clones so callers can mutate
// freely before saving back.
func (t *Transaction) Clone() *Transaction {
	cp := Transaction{
		TransactionID: t.TransactionID,
		Date:          t.Date,
		Entries:       make([]Entry, len(t.Entries)),
	}
	copy(cp.Entries, t.Entries)
	return &cp
}

// EarlierDate returns the earlier of two dates.
func EarlierDate(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
