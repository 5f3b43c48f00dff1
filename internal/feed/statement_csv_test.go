package feed_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	"github.com/ledgerops/recon_app/internal/feed"
)

const statementHeader = "Date,Type,Name,Currency,Gross,Fee,Shipping,Transaction ID\n"

func TestReadStatementCSV(t *testing.T) {
	input := statementHeader +
		"2024-03-01,Payment Received,Buyer One,USD,29.99,-0.87,0,TX001\n" +
		"2024-03-02,Shopping Cart Payment Sent,Cart,USD,-31.00,0,1.00,TX002\n" +
		"2024-03-02,Shopping Cart Item,Widget,USD,10.00,0,0,\n" +
		"2024-03-03,Currency Conversion (debit),,USD,-38.05,0,0,TX003\n"

	rows, err := feed.ReadStatementCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, domain.RowPayment, rows[0].Kind)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, "Buyer One", rows[0].Name)
	assert.Equal(t, domain.Amount(2999), rows[0].Amount)
	assert.Equal(t, domain.Amount(-87), rows[0].Fee)
	assert.Equal(t, "TX001", rows[0].UniqueID)

	assert.Equal(t, domain.RowCartPayment, rows[1].Kind)
	assert.Equal(t, domain.Amount(-3100), rows[1].Amount)
	assert.Equal(t, domain.Amount(100), rows[1].ShippingHandling)

	assert.Equal(t, domain.RowCartItem, rows[2].Kind)
	assert.Equal(t, domain.RowConversionDebit, rows[3].Kind)
}

func TestReadStatementCSV_UnknownTypeIsUnsupported(t *testing.T) {
	input := statementHeader +
		"2024-03-01,Mystery Movement,Someone,USD,10.00,0,0,TX001\n"

	_, err := feed.ReadStatementCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
}

func TestReadStatementCSV_WrongHeaderIsUnsupported(t *testing.T) {
	input := "Datum,Type,Name,Currency,Gross,Fee,Shipping,Transaction ID\n"

	_, err := feed.ReadStatementCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
}

func TestReadStatementCSV_BadDate(t *testing.T) {
	input := statementHeader +
		"03/01/2024,Payment Received,Buyer,USD,10.00,0,0,TX001\n"

	_, err := feed.ReadStatementCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
}

func TestReadStatementCSV_SubMinorUnitPrecision(t *testing.T) {
	input := statementHeader +
		"2024-03-01,Payment Received,Buyer,USD,10.001,0,0,TX001\n"

	_, err := feed.ReadStatementCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
}

func TestReadStatementCSV_UnknownCurrency(t *testing.T) {
	input := statementHeader +
		"2024-03-01,Payment Received,Buyer,XXX,10.00,0,0,TX001\n"

	_, err := feed.ReadStatementCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
}

func TestMinorUnit(t *testing.T) {
	mu, err := feed.MinorUnit("USD")
	require.NoError(t, err)
	assert.Equal(t, int32(2), mu)

	mu, err = feed.MinorUnit("JPY")
	require.NoError(t, err)
	assert.Equal(t, int32(0), mu)

	_, err = feed.MinorUnit("XXX")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
}
