package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerops/recon_app/internal/core/domain"
	portsrepo "github.com/ledgerops/recon_app/internal/core/ports/repositories"
)

// Memo prefixes recognized by the entry classifier. These are written by this
// importer itself, so matching on them is stable across account renames.
const (
	postageMemoPrefix   = "Postage and packing"
	promotionMemoPrefix = "Promotion"
)

type entryClass int

const (
	classCharge entryClass = iota
	classPostage
	classGiftcard
	classPromotion
	classItem
)

// ShipmentSlot is a caller-held mutable slot for the shipment that receives
// brand-new items of the current order. The slot starts empty; the first
// CreateNewItem call fills it lazily.
type ShipmentSlot struct {
	Shipment *domain.Shipment
}

// OrderBuilder reconstructs the order -> shipments -> items hierarchy for one
// external order number: pre-existing transactions tagged with the number are
// wrapped into shipments, and a builder API appends brand-new shipments for
// items not matched to any of them.
type OrderBuilder struct {
	draft    portsrepo.Draft
	accounts AccountSet
}

// NewOrderBuilder creates a builder working inside the given draft.
func NewOrderBuilder(draft portsrepo.Draft, accounts AccountSet) *OrderBuilder {
	return &OrderBuilder{draft: draft, accounts: accounts}
}

// BuildOrder looks up transactions already tagged with the order number and
// instantiates one shipment wrapper per transaction, classifying each of its
// entries into the charge/postage/giftcard/promotion/item buckets.
func (b *OrderBuilder) BuildOrder(ctx context.Context, orderNumber string, date time.Time, total domain.Amount) (*domain.Order, error) {
	order := &domain.Order{
		OrderNumber: orderNumber,
		Date:        date,
		Total:       total,
	}

	entries, err := b.draft.EntriesWithOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("loading entries for order %s: %w", orderNumber, err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if seen[e.TransactionID] {
			continue
		}
		seen[e.TransactionID] = true

		t, err := b.draft.FindTransactionByID(ctx, e.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("loading transaction %s for order %s: %w", e.TransactionID, orderNumber, err)
		}
		s, err := b.wrapTransaction(t)
		if err != nil {
			return nil, err
		}
		order.Shipments = append(order.Shipments, s)
	}
	return order, nil
}

// wrapTransaction classifies the entries of one existing transaction into a
// shipment. A positive charge means money flowed back to the charge account,
// which marks the shipment as a return.
func (b *OrderBuilder) wrapTransaction(t *domain.Transaction) (*domain.Shipment, error) {
	s := &domain.Shipment{
		ShipmentID:      uuid.NewString(),
		TransactionID:   t.TransactionID,
		Date:            t.Date,
		ChargeAccountID: b.accounts.Charge,
	}
	for _, e := range t.Entries {
		var err error
		switch b.classifyEntry(e) {
		case classCharge:
			err = s.Charge.Set(e.Amount)
			if e.Amount > 0 {
				s.IsReturn = true
			}
		case classPostage:
			err = s.Postage.Set(e.Amount)
		case classGiftcard:
			err = s.Giftcard.Set(e.Amount)
		case classPromotion:
			err = s.Promotion.Set(e.Amount)
		default:
			s.Items = append(s.Items, domain.Item{
				EntryID:     e.EntryID,
				Description: e.Memo,
				Quantity:    1,
				Amount:      e.Amount,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("entry %s in transaction %s: %w", e.EntryID, t.TransactionID, err)
		}
	}
	return s, nil
}

// classifyEntry assigns an entry to its bucket. The order of the tests is part
// of the contract and must stay deterministic: charge first, then postage,
// then giftcard — except that a giftcard-account entry with a description is
// an item — then promotion; anything unclassified is an item.
func (b *OrderBuilder) classifyEntry(e domain.Entry) entryClass {
	switch {
	case e.AccountID == b.accounts.Charge:
		return classCharge
	case e.AccountID == b.accounts.Postage || strings.HasPrefix(e.Memo, postageMemoPrefix):
		return classPostage
	case e.AccountID == b.accounts.Giftcard:
		if e.Memo != "" {
			return classItem
		}
		return classGiftcard
	case e.AccountID == b.accounts.Promotion || strings.HasPrefix(e.Memo, promotionMemoPrefix):
		return classPromotion
	default:
		return classItem
	}
}

// CreateNewItem appends an item to the shipment held by slot. When the slot is
// still empty a shipment is lazily created and dated to the order date; the
// lazy creation is idempotent across repeated calls within the same order.
func (b *OrderBuilder) CreateNewItem(order *domain.Order, slot *ShipmentSlot, description string, quantity int, amount domain.Amount) *domain.Item {
	if slot.Shipment == nil {
		s := &domain.Shipment{
			ShipmentID:      uuid.NewString(),
			Date:            order.Date,
			ChargeAccountID: b.accounts.Charge,
		}
		order.Shipments = append(order.Shipments, s)
		slot.Shipment = s
	}
	slot.Shipment.Items = append(slot.Shipment.Items, domain.Item{
		Description: description,
		Quantity:    quantity,
		Amount:      amount,
	})
	return &slot.Shipment.Items[len(slot.Shipment.Items)-1]
}

// FinalizeShipment determines the shipment's charge (when still unset) from
// its items and sub-amounts and materializes the shipment as a pending
// transaction with every entry tagged with the order number.
func (b *OrderBuilder) FinalizeShipment(order *domain.Order, s *domain.Shipment) (*domain.Transaction, error) {
	if _, known := s.Charge.Value(); !known {
		charge := -(s.ItemsTotal() + s.Postage.OrZero() + s.Giftcard.OrZero() + s.Promotion.OrZero())
		if err := s.Charge.Set(charge); err != nil {
			return nil, err
		}
	}

	t := &domain.Transaction{
		TransactionID: uuid.NewString(),
		Date:          s.Date,
	}
	t.AddEntry(domain.Entry{
		EntryID:     uuid.NewString(),
		AccountID:   b.accounts.Charge,
		Amount:      s.Charge.OrZero(),
		Memo:        "Order " + order.OrderNumber,
		OrderNumber: order.OrderNumber,
	})
	for i := range s.Items {
		e := domain.Entry{
			EntryID:     uuid.NewString(),
			AccountID:   b.accounts.Purchases,
			Amount:      s.Items[i].Amount,
			Memo:        s.Items[i].Description,
			OrderNumber: order.OrderNumber,
		}
		s.Items[i].EntryID = e.EntryID
		t.AddEntry(e)
	}
	if v, known := s.Postage.Value(); known {
		t.AddEntry(domain.Entry{
			EntryID:     uuid.NewString(),
			AccountID:   b.accounts.Postage,
			Amount:      v,
			Memo:        postageMemoPrefix,
			OrderNumber: order.OrderNumber,
		})
	}
	if v, known := s.Giftcard.Value(); known {
		t.AddEntry(domain.Entry{
			EntryID:     uuid.NewString(),
			AccountID:   b.accounts.Giftcard,
			Amount:      v,
			OrderNumber: order.OrderNumber,
		})
	}
	if v, known := s.Promotion.Value(); known {
		t.AddEntry(domain.Entry{
			EntryID:     uuid.NewString(),
			AccountID:   b.accounts.Promotion,
			Amount:      v,
			Memo:        promotionMemoPrefix,
			OrderNumber: order.OrderNumber,
		})
	}
	s.TransactionID = t.TransactionID
	return t, nil
}
