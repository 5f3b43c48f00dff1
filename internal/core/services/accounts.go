package services

import (
	"fmt"

	"github.com/ledgerops/recon_app/internal/apperrors"
)

// AccountSet names the fixed accounts an import run posts to. Classification
// works over these stable identifiers, never over display names, so renaming
// an account in the UI cannot silently reclassify data.
type AccountSet struct {
	// Bank is the capital account of the statement source (processor balance).
	Bank string
	// Charge is the capital account orders are billed to (credit card).
	Charge string
	// Purchases is the income/expense bucket for uncategorized purchases.
	Purchases string
	// Fees is the expense account for processor fees.
	Fees string
	// Postage is the expense account for postage and packing.
	Postage string
	// Giftcard is the account giftcard redemptions post to.
	Giftcard string
	// Promotion is the account promotional rebates post to.
	Promotion string
	// UnmatchedAccount is the placeholder bucket for legs whose counterpart
	// has not been found yet.
	UnmatchedAccount string
}

// Validate checks that the accounts an import cannot run without are present.
func (a AccountSet) Validate() error {
	required := map[string]string{
		"bank":      a.Bank,
		"charge":    a.Charge,
		"purchases": a.Purchases,
		"unmatched": a.UnmatchedAccount,
	}
	for name, id := range required {
		if id == "" {
			return fmt.Errorf("%w: %s account not configured", apperrors.ErrValidation, name)
		}
	}
	return nil
}
