package services

import (
	"fmt"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
)

// ValidateTransaction checks the structural invariants of a transaction: at
// least two entries, every entry carries an account and a non-zero amount, and
// the amounts sum to zero. It is pure and read-only so it can be called
// defensively both before and after any mutation.
func ValidateTransaction(t *domain.Transaction) error {
	if len(t.Entries) < 2 {
		return fmt.Errorf("%w: transaction %s has %d entries, need at least 2",
			apperrors.ErrUnbalanced, t.TransactionID, len(t.Entries))
	}
	for _, e := range t.Entries {
		if e.AccountID == "" {
			return fmt.Errorf("%w: entry %s in transaction %s",
				apperrors.ErrMissingAccount, e.EntryID, t.TransactionID)
		}
		if e.Amount == 0 {
			return fmt.Errorf("%w: entry %s (%q) in transaction %s",
				apperrors.ErrZeroAmount, e.EntryID, e.Memo, t.TransactionID)
		}
	}
	if sum := t.Sum(); sum != 0 {
		return fmt.Errorf("%w: transaction %s sums to %d",
			apperrors.ErrUnbalanced, t.TransactionID, sum)
	}
	return nil
}

// ValidateOrder recomputes the charge sum over non-return shipments and checks
// it against the declared order total. The feed's displayed total does not
// reflect returns, so return shipments are deliberately excluded even though
// they remain in the hierarchy. Pure and read-only.
func ValidateOrder(o *domain.Order) error {
	chargeSum := o.ChargeSum()
	if chargeSum != -o.Total {
		return fmt.Errorf("%w: order %s declares total %d but non-return shipment charges sum to %d",
			apperrors.ErrOrderTotalMismatch, o.OrderNumber, o.Total, chargeSum)
	}
	return nil
}
