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

const bankHeader = "Date,Description,Amount,Currency,Reference\n"

func TestReadBankDownloadCSV(t *testing.T) {
	input := bankHeader +
		"2024-03-03,CARD PAYMENT WIDGETS LTD,-29.99,USD,FT240303001\n" +
		"2024-03-04,INCOMING TRANSFER,150.00,USD,FT240304002\n"

	rows, err := feed.ReadBankDownloadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, domain.RowPayment, rows[0].Kind)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, "CARD PAYMENT WIDGETS LTD", rows[0].Name)
	assert.Equal(t, domain.Amount(-2999), rows[0].Amount)
	assert.Equal(t, "FT240303001", rows[0].UniqueID)

	assert.Equal(t, domain.Amount(15000), rows[1].Amount)
}

func TestReadBankDownloadCSV_WrongHeaderIsUnsupported(t *testing.T) {
	input := "Datum,Description,Amount,Currency,Reference\n"

	_, err := feed.ReadBankDownloadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
}

func TestReadBankDownloadCSV_BadDate(t *testing.T) {
	input := bankHeader +
		"03/03/2024,CARD PAYMENT,-29.99,USD,FT240303001\n"

	_, err := feed.ReadBankDownloadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
}

func TestReadBankDownloadCSV_UnknownCurrency(t *testing.T) {
	input := bankHeader +
		"2024-03-03,CARD PAYMENT,-29.99,XXX,FT240303001\n"

	_, err := feed.ReadBankDownloadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedData)
}
