package domain

import "time"

// Item is the leaf of a shipment: one purchased article.
type Item struct {
	EntryID     string `json:"entryID"` // ledger entry backing this item ("" until persisted)
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Amount      Amount `json:"amount"`    // line amount, minor units
	CatalogID   string `json:"catalogID"` // external catalog id (ASIN/ISBN), "" = none
	ImageURL    string `json:"imageURL,omitempty"`
}

// Shipment groups the entries of one physical shipment of an order. The
// charge amount stays Unset until first determined and is write-once after
// that; postage, giftcard and promotion behave the same way.
type Shipment struct {
	ShipmentID      string    `json:"shipmentID"`
	TransactionID   string    `json:"transactionID"` // backing ledger transaction ("" until persisted)
	Date            time.Time `json:"date"`
	ChargeAccountID string    `json:"chargeAccountID"`
	Charge          OptAmount `json:"-"` // amount billed to the charge account (negative)
	Postage         OptAmount `json:"-"`
	Giftcard        OptAmount `json:"-"`
	Promotion       OptAmount `json:"-"`
	IsReturn        bool      `json:"isReturn"`
	Items           []Item    `json:"items"`
}

// ItemsTotal returns the sum of the shipment's item line amounts.
func (s *Shipment) ItemsTotal() Amount {
	var total Amount
	for _, it := range s.Items {
		total += it.Amount
	}
	return total
}

// HasItem reports whether an item with the given description and amount is
// already present. Used to keep repeated imports of the same feed idempotent.
func (s *Shipment) HasItem(description string, amount Amount) bool {
	for _, it := range s.Items {
		if it.Description == description && it.Amount == amount {
			return true
		}
	}
	return false
}

// Order is the transient hierarchical grouping of an e-commerce feed: one
// order, its shipments, their items. It exists only while the order is being
// reconciled; once shipments are attached to persisted transactions the
// hierarchy is discardable.
type Order struct {
	OrderNumber string      `json:"orderNumber"`
	Date        time.Time   `json:"date"`
	Total       Amount      `json:"total"` // declared order total, positive
	Shipments   []*Shipment `json:"shipments"`
}

// ChargeSum returns the sum of determined charge amounts over non-return
// shipments. Returns still appear in the hierarchy but the feed's displayed
// order total does not reflect them, so they are excluded here.
func (o *Order) ChargeSum() Amount {
	var total Amount
	for _, s := range o.Shipments {
		if s.IsReturn {
			continue
		}
		total += s.Charge.OrZero()
	}
	return total
}

// FindItem searches all shipments for an item with the given description and
// amount, returning the shipment holding it, or nil.
func (o *Order) FindItem(description string, amount Amount) *Shipment {
	for _, s := range o.Shipments {
		if s.HasItem(description, amount) {
			return s
		}
	}
	return nil
}
