package domain

import "time"

// Entry is one leg of a double-entry transaction.
type Entry struct {
	EntryID       string     `json:"entryID"`
	TransactionID string     `json:"transactionID"`
	AccountID     string     `json:"accountID"`
	Amount        Amount     `json:"amount"` // signed, minor units
	Memo          string     `json:"memo"`
	UniqueID      string     `json:"uniqueID"`     // external transaction id ("" = none)
	StatementRef  string     `json:"statementRef"` // bank statement reconciliation marker ("" = none)
	OrderNumber   string     `json:"orderNumber"`  // external order tag ("" = none)
	ValutaDate    *time.Time `json:"valutaDate,omitempty"`
}

// Reconciled reports whether the entry is already linked to an external unique
// id or statement reference. Reconciled entries represent completed matches
// and must never be offered to the matcher again.
func (e Entry) Reconciled() bool {
	return e.UniqueID != "" || e.StatementRef != ""
}
