package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
)

// orderColumns is the expected header of an order-report export, in order.
// Every row is one item; the order-level columns repeat on each of its rows.
var orderColumns = []string{"Order Date", "Order ID", "Title", "Quantity", "Item Total", "Shipping Charge", "Total Charged", "Order Status", "ASIN", "Currency"}

// ReadOrderReportCSV tokenizes an order report. For each run of rows sharing
// an order id, an ORDER header row is synthesized from the order-level
// columns, followed by one ORDER_ITEM row per record.
func ReadOrderReportCSV(r io.Reader) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(orderColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading order report header: %v", apperrors.ErrParse, err)
	}
	for i, want := range orderColumns {
		if header[i] != want {
			return nil, fmt.Errorf("%w: order report column %d is %q, expected %q",
				apperrors.ErrUnsupportedData, i+1, header[i], want)
		}
	}

	var rows []domain.Row
	line := 1
	currentOrder := ""
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
			return nil, fmt.Errorf("%w: order date %q at line %d", apperrors.ErrUnsupportedData, record[0], line)
		}
		orderNumber := record[1]
		if orderNumber == "" {
			return nil, fmt.Errorf("%w: missing order id at line %d", apperrors.ErrParse, line)
		}
		currency := record[9]

		quantity := 1
		if record[3] != "" {
			if _, err := fmt.Sscanf(record[3], "%d", &quantity); err != nil {
				return nil, fmt.Errorf("%w: quantity %q at line %d", apperrors.ErrUnsupportedData, record[3], line)
			}
		}
		itemTotal, err := parseAmountColumn(record[4], currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		shipping, err := parseAmountColumn(record[5], currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		totalCharged, err := parseAmountColumn(record[6], currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if orderNumber != currentOrder {
			currentOrder = orderNumber
			rows = append(rows, domain.Row{
				Line:         line,
				Kind:         domain.RowOrder,
				Date:         date,
				Amount:       totalCharged,
				CurrencyCode: currency,
				OrderNumber:  orderNumber,
			})
		}
		rows = append(rows, domain.Row{
			Line:             line,
			Kind:             domain.RowOrderItem,
			Date:             date,
			Name:             record[2],
			Amount:           itemTotal,
			ShippingHandling: shipping,
			CurrencyCode:     currency,
			OrderNumber:      orderNumber,
			Quantity:         quantity,
			CatalogID:        record[8],
			Status:           record[7],
		})
	}
	return rows, nil
}
