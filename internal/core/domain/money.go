package domain

import (
	"fmt"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Amount is a signed quantity of money in minor units (e.g. cents). All ledger
// arithmetic happens on this integer type; decimal conversion is confined to
// the parse/format edges.
type Amount int64

// FormatAmount renders a minor-unit amount as a decimal string, e.g. 2999 -> "29.99".
func FormatAmount(a Amount, minorUnit int32) string {
	return decimal.New(int64(a), -minorUnit).StringFixed(minorUnit)
}

// ParseAmount converts a decimal string into minor units, e.g. "29.99" -> 2999.
// A value with more fractional digits than the currency carries is rejected
// rather than rounded.
func ParseAmount(s string, minorUnit int32) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", apperrors.ErrUnsupportedData, s, err)
	}
	shifted := d.Shift(minorUnit)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: amount %q has sub-minor-unit precision", apperrors.ErrUnsupportedData, s)
	}
	return Amount(shifted.IntPart()), nil
}

// AmountState discriminates the three states of an optional sub-amount.
type AmountState int

const (
	// AmountUnset means the value has not been determined yet.
	AmountUnset AmountState = iota
	// AmountKnown means a concrete value has been determined.
	AmountKnown
	// AmountNotApplicable means the value is known to not exist for this
	// shipment (e.g. no giftcard was used), as opposed to not known yet.
	AmountNotApplicable
)

// OptAmount is a write-once-consistent optional amount. Once a value has been
// determined it may only ever be re-set to the same value; a different value
// is an AmountMismatch error. This replaces nil-means-two-things bookkeeping.
type OptAmount struct {
	state AmountState
	value Amount
}

// KnownAmount returns an OptAmount holding a determined value.
func KnownAmount(v Amount) OptAmount {
	return OptAmount{state: AmountKnown, value: v}
}

// NotApplicableAmount returns an OptAmount marking the value as absent by design.
func NotApplicableAmount() OptAmount {
	return OptAmount{state: AmountNotApplicable}
}

// State returns the discriminant.
func (o OptAmount) State() AmountState {
	return o.state
}

// Value returns the determined amount and whether one exists. NotApplicable
// reports 0, false.
func (o OptAmount) Value() (Amount, bool) {
	return o.value, o.state == AmountKnown
}

// OrZero returns the determined amount, or zero when unset or not applicable.
func (o OptAmount) OrZero() Amount {
	if o.state == AmountKnown {
		return o.value
	}
	return 0
}

// Set determines the value. Setting an already-known amount to the same value
// is a no-op; setting it to a different value fails with ErrAmountMismatch,
// preserving both values in the error text for manual reconciliation.
func (o *OptAmount) Set(v Amount) error {
	switch o.state {
	case AmountKnown:
		if o.value != v {
			return fmt.Errorf("%w: have %d, got %d", apperrors.ErrAmountMismatch, o.value, v)
		}
		return nil
	case AmountNotApplicable:
		return fmt.Errorf("%w: amount marked not applicable, got %d", apperrors.ErrAmountMismatch, v)
	default:
		o.state = AmountKnown
		o.value = v
		return nil
	}
}
