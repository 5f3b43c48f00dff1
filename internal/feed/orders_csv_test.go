package feed_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	"github.com/ledgerops/recon_app/internal/feed"
)

const orderHeader = "Order Date,Order ID,Title,Quantity,Item Total,Shipping Charge,Total Charged,Order Status,ASIN,Currency\n"

func TestReadOrderReportCSV(t *testing.T) {
	input := orderHeader +
		"2024-03-01,104-1234567,Widget,1,29.99,1.01,31.00,Shipped,B00AAAA,USD\n" +
		"2024-03-01,104-1234567,Gadget,2,15.00,0,31.00,Shipped,B00BBBB,USD\n" +
		"2024-03-02,104-7654321,Doohickey,1,9.99,0,9.99,Returned,B00CCCC,USD\n"

	rows, err := feed.ReadOrderReportCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 5) // two synthesized headers + three items

	assert.Equal(t, domain.RowOrder, rows[0].Kind)
	assert.Equal(t, "104-1234567", rows[0].OrderNumber)
	assert.Equal(t, domain.Amount(3100), rows[0].Amount)

	assert.Equal(t, domain.RowOrderItem, rows[1].Kind)
	assert.Equal(t, "Widget", rows[1].Name)
	assert.Equal(t, domain.Amount(2999), rows[1].Amount)
	assert.Equal(t, domain.Amount(101), rows[1].ShippingHandling)
	assert.Equal(t, "B00AAAA", rows[1].CatalogID)

	assert.Equal(t, domain.RowOrderItem, rows[2].Kind)
	assert.Equal(t, "Gadget", rows[2].Name)
	assert.Equal(t, 2, rows[2].Quantity)

	assert.Equal(t, domain.RowOrder, rows[3].Kind)
	assert.Equal(t, "104-7654321", rows[3].OrderNumber)
	assert.Equal(t, domain.Amount(999), rows[3].Amount)
	assert.Equal(t, "Returned", rows[4].Status)
}

func TestReadOrderReportCSV_MissingOrderID(t *testing.T) {
	input := orderHeader +
		"2024-03-01,,Widget,1,29.99,0,29.99,Shipped,B00AAAA,USD\n"

	_, err := feed.ReadOrderReportCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParse)
}

func TestReadOrderReportCSV_WrongColumnCount(t *testing.T) {
	input := orderHeader +
		"2024-03-01,104-1234567,Widget,1,29.99\n"

	_, err := feed.ReadOrderReportCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParse)
}

func TestReadOrderReportCSV_EmptyQuantityDefaultsToOne(t *testing.T) {
	input := orderHeader +
		"2024-03-01,104-1234567,Widget,,29.99,0,29.99,Shipped,B00AAAA,USD\n"

	rows, err := feed.ReadOrderReportCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[1].Quantity)
}
