package domain

import "time"

// RowKind identifies the type of an input feed row. The aggregator's grammar
// is keyed on these constants; anything else is unsupported data.
type RowKind string

const (
	// RowPayment is a self-contained single-row payment (sent or received).
	RowPayment RowKind = "PAYMENT"
	// RowCartPayment opens a multi-row cart group; item rows follow.
	RowCartPayment RowKind = "CART_PAYMENT"
	// RowCartItem is one item line belonging to the open cart group.
	RowCartItem RowKind = "CART_ITEM"
	// RowPaymentSent opens a payment group that may be followed by a
	// currency-conversion debit/credit pair.
	RowPaymentSent RowKind = "PAYMENT_SENT"
	// RowConversionDebit is the home-currency side of a conversion pair.
	RowConversionDebit RowKind = "CONVERSION_DEBIT"
	// RowConversionCredit is the foreign-currency side of a conversion pair.
	RowConversionCredit RowKind = "CONVERSION_CREDIT"
	// RowOrder is the header row of a hierarchical order feed.
	RowOrder RowKind = "ORDER"
	// RowOrderItem is one item row of the current order.
	RowOrderItem RowKind = "ORDER_ITEM"
)

// Row is one already-tokenized input record. The core never parses raw bytes;
// feed readers (or the API caller) populate these typed columns.
type Row struct {
	Line             int       `json:"line"` // 1-based source line for error context
	Kind             RowKind   `json:"kind"`
	Date             time.Time `json:"date"`
	Name             string    `json:"name"` // payee / counterparty / item title
	Memo             string    `json:"memo"`
	Amount           Amount    `json:"amount"` // signed gross amount, minor units
	Fee              Amount    `json:"fee"`    // processor fee, signed (usually negative)
	ShippingHandling Amount    `json:"shippingHandling"`
	CurrencyCode     string    `json:"currencyCode"`
	OrderNumber      string    `json:"orderNumber"`
	Quantity         int       `json:"quantity"`
	CatalogID        string    `json:"catalogID"`
	Status           string    `json:"status"`
	UniqueID         string    `json:"uniqueID"` // external transaction id
}

// OpensGroup reports whether this row kind starts a new aggregator group.
func (k RowKind) OpensGroup() bool {
	switch k {
	case RowPayment, RowCartPayment, RowPaymentSent:
		return true
	}
	return false
}
