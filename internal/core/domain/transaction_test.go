package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerops/recon_app/internal/core/domain"
)

func TestTransaction_Sum(t *testing.T) {
	tx := domain.Transaction{
		TransactionID: "txn-1",
		Entries: []domain.Entry{
			{EntryID: "e1", Amount: 2999},
			{EntryID: "e2", Amount: -2500},
			{EntryID: "e3", Amount: -499},
		},
	}
	assert.Equal(t, domain.Amount(0), tx.Sum())

	tx.Entries[2].Amount = -500
	assert.Equal(t, domain.Amount(-1), tx.Sum())
}

func TestTransaction_AddEntryReparents(t *testing.T) {
	tx := domain.Transaction{TransactionID: "txn-1"}
	tx.AddEntry(domain.Entry{EntryID: "e1", TransactionID: "txn-other", Amount: 100})

	require.Len(t, tx.Entries, 1)
	assert.Equal(t, "txn-1", tx.Entries[0].TransactionID)
}

func TestTransaction_RemoveEntry(t *testing.T) {
	tx := domain.Transaction{
		Entries: []domain.Entry{
			{EntryID: "e1"},
			{EntryID: "e2"},
			{EntryID: "e3"},
		},
	}

	assert.True(t, tx.RemoveEntry("e2"))
	require.Len(t, tx.Entries, 2)
	assert.Equal(t, "e1", tx.Entries[0].EntryID)
	assert.Equal(t, "e3", tx.Entries[1].EntryID)

	assert.False(t, tx.RemoveEntry("e2"))
}

func TestTransaction_CloneIsDeep(t *testing.T) {
	tx := &domain.Transaction{
		TransactionID: "txn-1",
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Entries:       []domain.Entry{{EntryID: "e1", Amount: 100}},
	}

	cp := tx.Clone()
	cp.Entries[0].Amount = 200
	cp.Entries = append(cp.Entries, domain.Entry{EntryID: "e2"})

	assert.Equal(t, domain.Amount(100), tx.Entries[0].Amount)
	assert.Len(t, tx.Entries, 1)
}

func TestEntry_Reconciled(t *testing.T) {
	assert.False(t, domain.Entry{}.Reconciled())
	assert.True(t, domain.Entry{UniqueID: "ext-1"}.Reconciled())
	assert.True(t, domain.Entry{StatementRef: "stmt-7"}.Reconciled())
}

func TestEarlierDate(t *testing.T) {
	a := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, a, domain.EarlierDate(a, b))
	assert.Equal(t, a, domain.EarlierDate(b, a))
	assert.Equal(t, a, domain.EarlierDate(a, a))
}

func TestOrder_ChargeSumSkipsReturns(t *testing.T) {
	o := domain.Order{
		Total: 2999,
		Shipments: []*domain.Shipment{
			{Charge: domain.KnownAmount(-2999)},
			{Charge: domain.KnownAmount(999), IsReturn: true},
		},
	}
	assert.Equal(t, domain.Amount(-2999), o.ChargeSum())
}

func TestOrder_FindItem(t *testing.T) {
	s := &domain.Shipment{
		Items: []domain.Item{{Description: "Widget", Amount: 1500}},
	}
	o := domain.Order{Shipments: []*domain.Shipment{s}}

	assert.Equal(t, s, o.FindItem("Widget", 1500))
	assert.Nil(t, o.FindItem("Widget", 1501))
	assert.Nil(t, o.FindItem("Gadget", 1500))
}
