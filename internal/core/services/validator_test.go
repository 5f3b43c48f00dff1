package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	"github.com/ledgerops/recon_app/internal/core/services"
)

func TestValidateTransaction(t *testing.T) {
	tests := []struct {
		name    string
		entries []domain.Entry
		wantErr error
	}{
		{
			name: "balanced two-leg transaction",
			entries: []domain.Entry{
				{EntryID: "e1", AccountID: "bank", Amount: -2999},
				{EntryID: "e2", AccountID: "purchases", Amount: 2999},
			},
		},
		{
			name: "balanced multi-leg transaction",
			entries: []domain.Entry{
				{EntryID: "e1", AccountID: "bank", Amount: -3100},
				{EntryID: "e2", AccountID: "purchases", Amount: 2999},
				{EntryID: "e3", AccountID: "postage", Amount: 101},
			},
		},
		{
			name: "single entry",
			entries: []domain.Entry{
				{EntryID: "e1", AccountID: "bank", Amount: -2999},
			},
			wantErr: apperrors.ErrUnbalanced,
		},
		{
			name:    "no entries",
			entries: nil,
			wantErr: apperrors.ErrUnbalanced,
		},
		{
			name: "non-zero sum",
			entries: []domain.Entry{
				{EntryID: "e1", AccountID: "bank", Amount: -2999},
				{EntryID: "e2", AccountID: "purchases", Amount: 2998},
			},
			wantErr: apperrors.ErrUnbalanced,
		},
		{
			name: "missing account",
			entries: []domain.Entry{
				{EntryID: "e1", AccountID: "", Amount: -2999},
				{EntryID: "e2", AccountID: "purchases", Amount: 2999},
			},
			wantErr: apperrors.ErrMissingAccount,
		},
		{
			name: "zero amount entry",
			entries: []domain.Entry{
				{EntryID: "e1", AccountID: "bank", Amount: 0},
				{EntryID: "e2", AccountID: "purchases", Amount: 0},
			},
			wantErr: apperrors.ErrZeroAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &domain.Transaction{TransactionID: "txn-1", Entries: tt.entries}
			err := services.ValidateTransaction(tx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateOrder(t *testing.T) {
	t.Run("charges match total", func(t *testing.T) {
		o := &domain.Order{
			OrderNumber: "104-1234567",
			Total:       2999,
			Shipments: []*domain.Shipment{
				{Charge: domain.KnownAmount(-2000)},
				{Charge: domain.KnownAmount(-999)},
			},
		}
		assert.NoError(t, services.ValidateOrder(o))
	})

	t.Run("mismatch is reported", func(t *testing.T) {
		o := &domain.Order{
			OrderNumber: "104-1234567",
			Total:       2999,
			Shipments: []*domain.Shipment{
				{Charge: domain.KnownAmount(-2000)},
			},
		}
		err := services.ValidateOrder(o)
		assert.ErrorIs(t, err, apperrors.ErrOrderTotalMismatch)
	})

	t.Run("return shipments are excluded", func(t *testing.T) {
		o := &domain.Order{
			OrderNumber: "104-1234567",
			Total:       2999,
			Shipments: []*domain.Shipment{
				{Charge: domain.KnownAmount(-2999)},
				{Charge: domain.KnownAmount(999), IsReturn: true},
			},
		}
		assert.NoError(t, services.ValidateOrder(o))
	})
}
