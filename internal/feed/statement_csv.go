package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
)

// statementColumns is the expected header of a payment-processor statement
// export, in order.
var statementColumns = []string{"Date", "Type", "Name", "Currency", "Gross", "Fee", "Shipping", "Transaction ID"}

// rowKindByType maps the processor's type strings onto the aggregator's row
// grammar. An unlisted type string is unsupported data.
var rowKindByType = map[string]domain.RowKind{
	"Payment Received":             domain.RowPayment,
	"Payment Refund":               domain.RowPayment,
	"Shopping Cart Payment Sent":   domain.RowCartPayment,
	"Shopping Cart Item":           domain.RowCartItem,
	"Payment Sent":                 domain.RowPaymentSent,
	"eBay Payment Sent":            domain.RowPaymentSent,
	"Currency Conversion (debit)":  domain.RowConversionDebit,
	"Currency Conversion (credit)": domain.RowConversionCredit,
}

// ReadStatementCSV tokenizes a statement export into typed rows. Dates are
// ISO (YYYY-MM-DD); amounts are decimal strings in the row's own currency.
func ReadStatementCSV(r io.Reader) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(statementColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading statement header: %v", apperrors.ErrParse, err)
	}
	for i, want := range statementColumns {
		if header[i] != want {
			return nil, fmt.Errorf("%w: statement column %d is %q, expected %q",
				apperrors.ErrUnsupportedData, i+1, header[i], want)
		}
	}

	var rows []domain.Row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrParse, line, err)
		}

		kind, ok := rowKindByType[record[1]]
		if !ok {
			return nil, fmt.Errorf("%w: row type %q at line %d", apperrors.ErrUnsupportedData, record[1], line)
		}
		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: date %q at line %d", apperrors.ErrUnsupportedData, record[0], line)
		}
		currency := record[3]
		gross, err := parseAmountColumn(record[4], currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		fee, err := parseAmountColumn(record[5], currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		shipping, err := parseAmountColumn(record[6], currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rows = append(rows, domain.Row{
			Line:             line,
			Kind:             kind,
			Date:             date,
			Name:             record[2],
			Amount:           gross,
			Fee:              fee,
			ShippingHandling: shipping,
			CurrencyCode:     currency,
			UniqueID:         record[7],
		})
	}
	return rows, nil
}
