package domain

// AccountType defines the fundamental kind of a ledger account.
type AccountType string

const (
	// Capital accounts hold real money (bank, payment processor balance,
	// credit card). Statement feeds post their money leg here.
	Capital AccountType = "CAPITAL"
	// IncomeExpense accounts categorize where money came from or went.
	IncomeExpense AccountType = "INCOME_EXPENSE"
	// Unmatched is the placeholder bucket for legs whose real counterpart has
	// not been found yet. Entries here are what the matcher later replaces.
	Unmatched AccountType = "UNMATCHED"
)

// Account represents a ledger bucket. The currency is fixed for the life of
// the account.
type Account struct {
	AccountID    string      `json:"accountID"`
	Name         string      `json:"name"`
	AccountType  AccountType `json:"accountType"`
	CurrencyCode string      `json:"currencyCode"`
	MinorUnit    int32       `json:"minorUnit"` // fractional digits of the currency, e.g. 2 for USD
}
