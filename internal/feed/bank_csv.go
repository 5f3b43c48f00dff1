package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
)

// bankColumns is the expected header of a bank account download, in order.
var bankColumns = []string{"Date", "Description", "Amount", "Currency", "Reference"}

// ReadBankDownloadCSV tokenizes a bank account download into payment rows.
// The bank reports only the movement: date, counterparty text, signed amount
// and its own reference. Purpose and counter-account come later from a
// statement or order feed.
func ReadBankDownloadCSV(r io.Reader) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(bankColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading bank download header: %v", apperrors.ErrParse, err)
	}
	for i, want := range bankColumns {
		if header[i] != want {
			return nil, fmt.Errorf("%w: bank download column %d is %q, expected %q",
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

		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: date %q at line %d", apperrors.ErrUnsupportedData, record[0], line)
		}
		currency := record[3]
		amount, err := parseAmountColumn(record[2], currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rows = append(rows, domain.Row{
			Line:         line,
			Kind:         domain.RowPayment,
			Date:         date,
			Name:         record[1],
			Amount:       amount,
			CurrencyCode: currency,
			UniqueID:     record[4],
		})
	}
	return rows, nil
}
