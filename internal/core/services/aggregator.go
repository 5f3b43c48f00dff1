package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
)

// FeedResult is the aggregator's verdict on one continuation row.
type FeedResult int

const (
	// FeedContinue means the row was absorbed into the open group.
	FeedContinue FeedResult = iota
	// FeedRejected means the row is of a continuation type but invalid in the
	// group's current state (e.g. a second conversion debit).
	FeedRejected
	// FeedTerminal means the row cannot belong to this group. The caller must
	// finish the group and replay the row as the first row of the next one.
	FeedTerminal
)

type accumulatorKind int

const (
	accPayment accumulatorKind = iota
	accCart
	accPaymentSent
)

// Accumulator holds the rows of one in-flight multi-row group.
type Accumulator struct {
	kind       accumulatorKind
	header     domain.Row
	items      []domain.Row
	convDebit  *domain.Row
	convCredit *domain.Row
}

// Aggregator converts a flat stream of typed rows into discrete pending
// transactions, absorbing continuation rows (cart items, currency-conversion
// pairs) into the group their header opened. Exactly one accumulator may be
// open at a time; opening a second is a logic error, not recoverable data.
type Aggregator struct {
	accounts     AccountSet
	homeCurrency string
	open         *Accumulator
}

// NewAggregator creates an aggregator posting to the given accounts.
// homeCurrency is the currency of the bank account; payments sent in any other
// currency must be accompanied by a conversion pair.
func NewAggregator(accounts AccountSet, homeCurrency string) *Aggregator {
	return &Aggregator{accounts: accounts, homeCurrency: homeCurrency}
}

// BeginGroup opens an accumulator for a group-opening row.
func (a *Aggregator) BeginGroup(first domain.Row) (*Accumulator, error) {
	if a.open != nil {
		return nil, fmt.Errorf("%w: line %d opens a new group while one is still open (line %d)",
			apperrors.ErrParse, first.Line, a.open.header.Line)
	}
	if !first.Kind.OpensGroup() {
		return nil, fmt.Errorf("%w: row kind %q cannot open a group (line %d)",
			apperrors.ErrUnsupportedData, first.Kind, first.Line)
	}
	kind := accPayment
	switch first.Kind {
	case domain.RowCartPayment:
		kind = accCart
	case domain.RowPaymentSent:
		kind = accPaymentSent
	}
	acc := &Accumulator{kind: kind, header: first}
	a.open = acc
	return acc, nil
}

// Feed offers the next row to the open accumulator.
func (a *Aggregator) Feed(h *Accumulator, next domain.Row) (FeedResult, error) {
	if a.open != h {
		return FeedRejected, fmt.Errorf("%w: feed on a closed accumulator", apperrors.ErrParse)
	}
	switch h.kind {
	case accPayment:
		return FeedTerminal, nil
	case accCart:
		if next.Kind != domain.RowCartItem {
			return FeedTerminal, nil
		}
		if next.CurrencyCode != h.header.CurrencyCode {
			return FeedRejected, fmt.Errorf("%w: cart item at line %d is in %s but the cart is in %s",
				apperrors.ErrParse, next.Line, next.CurrencyCode, h.header.CurrencyCode)
		}
		h.items = append(h.items, next)
		return FeedContinue, nil
	case accPaymentSent:
		switch next.Kind {
		case domain.RowConversionDebit:
			if h.convDebit != nil {
				return FeedRejected, fmt.Errorf("%w: duplicate conversion debit at line %d",
					apperrors.ErrParse, next.Line)
			}
			row := next
			h.convDebit = &row
			return FeedContinue, nil
		case domain.RowConversionCredit:
			if h.convCredit != nil {
				return FeedRejected, fmt.Errorf("%w: duplicate conversion credit at line %d",
					apperrors.ErrParse, next.Line)
			}
			row := next
			h.convCredit = &row
			return FeedContinue, nil
		default:
			return FeedTerminal, nil
		}
	}
	return FeedRejected, fmt.Errorf("%w: unknown accumulator kind", apperrors.ErrParse)
}

// Finish closes the accumulator and materializes its rows into one balanced
// pending transaction. Unresolved prerequisites (a foreign-currency payment
// without its conversion pair, a cart without item rows) are parse errors,
// never silent skips.
func (a *Aggregator) Finish(h *Accumulator) (*domain.Transaction, error) {
	if a.open != h {
		return nil, fmt.Errorf("%w: finish on a closed accumulator", apperrors.ErrParse)
	}
	a.open = nil

	switch h.kind {
	case accCart:
		return a.finishCart(h)
	case accPaymentSent:
		return a.finishPaymentSent(h)
	default:
		return a.finishPayment(h)
	}
}

// HasOpenGroup reports whether an accumulator is currently open.
func (a *Aggregator) HasOpenGroup() bool {
	return a.open != nil
}

func newPendingTransaction(h domain.Row) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: uuid.NewString(),
		Date:          h.Date,
	}
}

// finishPayment builds the transaction for a self-contained payment row:
// the net movement on the bank account, a fee leg when the processor took one,
// and the counter leg on the purchases bucket.
func (a *Aggregator) finishPayment(h *Accumulator) (*domain.Transaction, error) {
	if h.header.CurrencyCode != a.homeCurrency {
		return nil, fmt.Errorf("%w: payment at line %d is in %s, expected %s",
			apperrors.ErrUnsupportedData, h.header.Line, h.header.CurrencyCode, a.homeCurrency)
	}
	t := newPendingTransaction(h.header)
	t.AddEntry(domain.Entry{
		EntryID:   uuid.NewString(),
		AccountID: a.accounts.Bank,
		Amount:    h.header.Amount + h.header.Fee,
		Memo:      h.header.Name,
		UniqueID:  h.header.UniqueID,
	})
	if h.header.Fee != 0 {
		t.AddEntry(domain.Entry{
			EntryID:   uuid.NewString(),
			AccountID: a.accounts.Fees,
			Amount:    -h.header.Fee,
			Memo:      "Fee: " + h.header.Name,
		})
	}
	t.AddEntry(domain.Entry{
		EntryID:   uuid.NewString(),
		AccountID: a.accounts.Purchases,
		Amount:    -h.header.Amount,
		Memo:      h.header.Name,
	})
	return t, nil
}

// finishCart builds one transaction for a cart header and its item rows,
// apportioning the shared shipping/handling charge across the items pro rata.
func (a *Aggregator) finishCart(h *Accumulator) (*domain.Transaction, error) {
	if len(h.items) == 0 {
		return nil, fmt.Errorf("%w: cart payment at line %d has no item rows",
			apperrors.ErrParse, h.header.Line)
	}
	if h.header.CurrencyCode != a.homeCurrency {
		return nil, fmt.Errorf("%w: cart at line %d is in %s, expected %s",
			apperrors.ErrUnsupportedData, h.header.Line, h.header.CurrencyCode, a.homeCurrency)
	}

	weights := make([]domain.Amount, len(h.items))
	for i, it := range h.items {
		weights[i] = it.Amount
	}
	shares := DistributeCharge(h.header.ShippingHandling, weights)

	t := newPendingTransaction(h.header)
	t.AddEntry(domain.Entry{
		EntryID:   uuid.NewString(),
		AccountID: a.accounts.Bank,
		Amount:    h.header.Amount + h.header.Fee,
		Memo:      h.header.Name,
		UniqueID:  h.header.UniqueID,
	})
	if h.header.Fee != 0 {
		t.AddEntry(domain.Entry{
			EntryID:   uuid.NewString(),
			AccountID: a.accounts.Fees,
			Amount:    -h.header.Fee,
			Memo:      "Fee: " + h.header.Name,
		})
	}
	for i, it := range h.items {
		t.AddEntry(domain.Entry{
			EntryID:   uuid.NewString(),
			AccountID: a.accounts.Purchases,
			Amount:    it.Amount + shares[i],
			Memo:      it.Name,
		})
	}
	return t, nil
}

// finishPaymentSent builds the transaction for an outgoing payment. A payment
// in the home currency behaves like a plain payment; a foreign-currency one
// must have absorbed a complete conversion pair, whose debit side carries the
// home-currency amount that actually left the bank account.
func (a *Aggregator) finishPaymentSent(h *Accumulator) (*domain.Transaction, error) {
	if h.header.CurrencyCode == a.homeCurrency {
		if h.convDebit != nil || h.convCredit != nil {
			return nil, fmt.Errorf("%w: home-currency payment at line %d has conversion rows",
				apperrors.ErrParse, h.header.Line)
		}
		return a.finishPayment(h)
	}

	if h.convDebit == nil || h.convCredit == nil {
		return nil, fmt.Errorf("%w: payment at line %d in %s has no matching currency-conversion pair",
			apperrors.ErrParse, h.header.Line, h.header.CurrencyCode)
	}
	if h.convCredit.CurrencyCode != h.header.CurrencyCode || h.convCredit.Amount != -h.header.Amount {
		return nil, fmt.Errorf("%w: conversion credit at line %d does not cancel the payment amount %d %s",
			apperrors.ErrParse, h.convCredit.Line, h.header.Amount, h.header.CurrencyCode)
	}
	if h.convDebit.CurrencyCode != a.homeCurrency {
		return nil, fmt.Errorf("%w: conversion debit at line %d is in %s, expected %s",
			apperrors.ErrParse, h.convDebit.Line, h.convDebit.CurrencyCode, a.homeCurrency)
	}

	home := h.convDebit.Amount
	memo := fmt.Sprintf("%s (%s %s)", h.header.Name,
		domain.FormatAmount(-h.header.Amount, 2), h.header.CurrencyCode)

	t := newPendingTransaction(h.header)
	t.AddEntry(domain.Entry{
		EntryID:   uuid.NewString(),
		AccountID: a.accounts.Bank,
		Amount:    home,
		Memo:      memo,
		UniqueID:  h.header.UniqueID,
	})
	t.AddEntry(domain.Entry{
		EntryID:   uuid.NewString(),
		AccountID: a.accounts.Purchases,
		Amount:    -home,
		Memo:      memo,
	})
	return t, nil
}
