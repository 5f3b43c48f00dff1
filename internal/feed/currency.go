// Package feed turns exported CSV files into the typed row stream the
// reconciliation core consumes. The readers only tokenize: grouping rows into
// transactions and all ledger work stay in the core services.
package feed

import (
	"fmt"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
)

// minorUnits lists the currencies the feeds are allowed to carry. Anything
// else is unsupported data; the importer never guesses an exponent.
var minorUnits = map[string]int32{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"CAD": 2,
	"AUD": 2,
	"CHF": 2,
	"JPY": 0,
}

// MinorUnit returns the fractional digits of a supported currency.
func MinorUnit(currencyCode string) (int32, error) {
	mu, ok := minorUnits[currencyCode]
	if !ok {
		return 0, fmt.Errorf("%w: currency %q", apperrors.ErrUnsupportedData, currencyCode)
	}
	return mu, nil
}

func parseAmountColumn(value, currencyCode string) (domain.Amount, error) {
	if value == "" {
		return 0, nil
	}
	mu, err := MinorUnit(currencyCode)
	if err != nil {
		return 0, err
	}
	return domain.ParseAmount(value, mu)
}
