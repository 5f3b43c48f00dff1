package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		minorUnit int32
		want      domain.Amount
		wantErr   bool
	}{
		{name: "two decimals", input: "29.99", minorUnit: 2, want: 2999},
		{name: "negative", input: "-29.99", minorUnit: 2, want: -2999},
		{name: "whole number", input: "30", minorUnit: 2, want: 3000},
		{name: "trailing zero", input: "0.50", minorUnit: 2, want: 50},
		{name: "zero", input: "0", minorUnit: 2, want: 0},
		{name: "zero minor unit currency", input: "1200", minorUnit: 0, want: 1200},
		{name: "sub-minor-unit precision", input: "29.999", minorUnit: 2, wantErr: true},
		{name: "fraction in zero-unit currency", input: "12.5", minorUnit: 0, wantErr: true},
		{name: "not a number", input: "abc", minorUnit: 2, wantErr: true},
		{name: "empty", input: "", minorUnit: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseAmount(tt.input, tt.minorUnit)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "29.99", domain.FormatAmount(2999, 2))
	assert.Equal(t, "-29.99", domain.FormatAmount(-2999, 2))
	assert.Equal(t, "0.00", domain.FormatAmount(0, 2))
	assert.Equal(t, "1200", domain.FormatAmount(1200, 0))
	assert.Equal(t, "0.05", domain.FormatAmount(5, 2))
}

func TestOptAmount_SetIsWriteOnce(t *testing.T) {
	var o domain.OptAmount
	assert.Equal(t, domain.AmountUnset, o.State())

	require.NoError(t, o.Set(500))
	v, known := o.Value()
	assert.True(t, known)
	assert.Equal(t, domain.Amount(500), v)

	// Re-setting the same value is a no-op.
	require.NoError(t, o.Set(500))

	err := o.Set(600)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAmountMismatch)
	v, _ = o.Value()
	assert.Equal(t, domain.Amount(500), v, "failed Set must not change the value")
}

func TestOptAmount_NotApplicable(t *testing.T) {
	o := domain.NotApplicableAmount()
	assert.Equal(t, domain.AmountNotApplicable, o.State())

	_, known := o.Value()
	assert.False(t, known)
	assert.Equal(t, domain.Amount(0), o.OrZero())

	err := o.Set(100)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAmountMismatch)
}

func TestOptAmount_OrZero(t *testing.T) {
	var unset domain.OptAmount
	assert.Equal(t, domain.Amount(0), unset.OrZero())
	assert.Equal(t, domain.Amount(-42), domain.KnownAmount(-42).OrZero())
}
