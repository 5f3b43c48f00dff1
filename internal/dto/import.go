package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
)

// RowRequest is one tokenized input row as submitted by an API caller.
// Amounts are decimal strings ("29.99"); the currency's minor unit decides the
// conversion to integer minor units.
type RowRequest struct {
	Line             int    `json:"line"`
	Kind             string `json:"kind" binding:"required,rowkind"`
	Date             string `json:"date" binding:"required"` // YYYY-MM-DD
	Name             string `json:"name"`
	Memo             string `json:"memo"`
	Amount           string `json:"amount" binding:"required"`
	Fee              string `json:"fee"`
	ShippingHandling string `json:"shippingHandling"`
	CurrencyCode     string `json:"currencyCode" binding:"required,len=3"`
	OrderNumber      string `json:"orderNumber"`
	Quantity         int    `json:"quantity"`
	CatalogID        string `json:"catalogID"`
	Status           string `json:"status"`
	UniqueID         string `json:"uniqueID"`
}

// ImportRequest is the payload of POST /api/v1/imports.
type ImportRequest struct {
	Source string       `json:"source" binding:"required,oneof=paypal ebay amazon"`
	Feed   string       `json:"feed" binding:"required,oneof=statement orders bank"`
	Rows   []RowRequest `json:"rows" binding:"required,min=1,dive"`
}

// ToDomainRow converts a request row into the typed row the core consumes.
func (r RowRequest) ToDomainRow(minorUnit int32) (domain.Row, error) {
	kind := domain.RowKind(r.Kind)
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return domain.Row{}, fmt.Errorf("%w: date %q", apperrors.ErrUnsupportedData, r.Date)
	}
	amount, err := domain.ParseAmount(r.Amount, minorUnit)
	if err != nil {
		return domain.Row{}, err
	}
	var fee, shipping domain.Amount
	if r.Fee != "" {
		if fee, err = domain.ParseAmount(r.Fee, minorUnit); err != nil {
			return domain.Row{}, err
		}
	}
	if r.ShippingHandling != "" {
		if shipping, err = domain.ParseAmount(r.ShippingHandling, minorUnit); err != nil {
			return domain.Row{}, err
		}
	}
	return domain.Row{
		Line:             r.Line,
		Kind:             kind,
		Date:             date,
		Name:             r.Name,
		Memo:             r.Memo,
		Amount:           amount,
		Fee:              fee,
		ShippingHandling: shipping,
		CurrencyCode:     r.CurrencyCode,
		OrderNumber:      r.OrderNumber,
		Quantity:         r.Quantity,
		CatalogID:        r.CatalogID,
		Status:           r.Status,
		UniqueID:         r.UniqueID,
	}, nil
}

// TransactionSummary describes one created or merged transaction in a batch result.
type TransactionSummary struct {
	TransactionID string `json:"transactionID"`
	Date          string `json:"date"`
	EntryCount    int    `json:"entryCount"`
	OrderNumber   string `json:"orderNumber,omitempty"`
}

// RowErrorResponse is one structured import error. The exact numeric values
// involved are preserved in the message so users can reconcile by hand.
type RowErrorResponse struct {
	Line        int    `json:"line,omitempty"`
	OrderNumber string `json:"orderNumber,omitempty"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	Fatal       bool   `json:"fatal"`
}

// BatchResult is the outcome of one import run.
type BatchResult struct {
	BatchID   string               `json:"batchID"`
	Source    string               `json:"source"`
	Committed bool                 `json:"committed"`
	Created   []TransactionSummary `json:"created"`
	Merged    []TransactionSummary `json:"merged"`
	Skipped   int                  `json:"skipped"`
	Errors    []RowErrorResponse   `json:"errors"`
}

// ToTransactionSummary converts a domain transaction for the batch result.
func ToTransactionSummary(t *domain.Transaction, orderNumber string) TransactionSummary {
	return TransactionSummary{
		TransactionID: t.TransactionID,
		Date:          t.Date.Format("2006-01-02"),
		EntryCount:    len(t.Entries),
		OrderNumber:   orderNumber,
	}
}

// ToRowErrorResponses flattens a BatchError into response DTOs.
func ToRowErrorResponses(be *apperrors.BatchError) []RowErrorResponse {
	if be == nil {
		return nil
	}
	out := make([]RowErrorResponse, 0, len(be.Rows))
	for _, r := range be.Rows {
		out = append(out, RowErrorResponse{
			Line:        r.Line,
			OrderNumber: r.OrderNumber,
			Kind:        errorKind(r.Err),
			Message:     r.Err.Error(),
			Fatal:       !errors.Is(r.Err, apperrors.ErrMergeConflict),
		})
	}
	return out
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrParse):
		return "PARSE"
	case errors.Is(err, apperrors.ErrUnbalanced):
		return "UNBALANCED"
	case errors.Is(err, apperrors.ErrOrderTotalMismatch):
		return "ORDER_TOTAL_MISMATCH"
	case errors.Is(err, apperrors.ErrAmountMismatch):
		return "AMOUNT_MISMATCH"
	case errors.Is(err, apperrors.ErrUnsupportedData):
		return "UNSUPPORTED_DATA"
	case errors.Is(err, apperrors.ErrMergeConflict):
		return "MERGE_CONFLICT"
	case errors.Is(err, apperrors.ErrMissingAccount):
		return "MISSING_ACCOUNT"
	case errors.Is(err, apperrors.ErrZeroAmount):
		return "ZERO_AMOUNT"
	default:
		return "INTERNAL"
	}
}
