package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	portsrepo "github.com/ledgerops/recon_app/internal/core/ports/repositories"
	portssvc "github.com/ledgerops/recon_app/internal/core/ports/services"
	"github.com/ledgerops/recon_app/internal/dto"
	"github.com/ledgerops/recon_app/internal/middleware"
)

// ImportConfig carries the per-deployment settings of the importer.
type ImportConfig struct {
	Accounts     AccountSet
	HomeCurrency string
	// WindowDays is the forward-only matching window; vendor charges
	// typically post a few days after the feed's nominal date.
	WindowDays int
}

// importService runs import batches: one ordered stream of rows, one draft,
// one commit-or-discard.
type importService struct {
	ledger portsrepo.LedgerRepository
	cfg    ImportConfig
}

// NewImportService creates the importer facade.
func NewImportService(ledger portsrepo.LedgerRepository, cfg ImportConfig) (portssvc.ImporterSvcFacade, error) {
	if err := cfg.Accounts.Validate(); err != nil {
		return nil, err
	}
	if cfg.HomeCurrency == "" {
		return nil, fmt.Errorf("%w: home currency not configured", apperrors.ErrValidation)
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 5
	}
	return &importService{ledger: ledger, cfg: cfg}, nil
}

var _ portssvc.ImporterSvcFacade = (*importService)(nil)

// run wraps the draft lifecycle around a batch body: acquire on entry,
// guaranteed release on every exit path, commit only when nothing fatal was
// collected. The body receives the draft and the shared error collector.
func (s *importService) run(ctx context.Context, source string, body func(draft portsrepo.Draft, result *dto.BatchResult, batchErrs *apperrors.BatchError) error) (*dto.BatchResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result := &dto.BatchResult{
		BatchID: uuid.NewString(),
		Source:  source,
	}
	batchErrs := &apperrors.BatchError{}

	draft, err := s.ledger.BeginDraft(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning draft: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if derr := draft.Discard(ctx); derr != nil {
				logger.Error("Failed to discard draft", slog.String("batch_id", result.BatchID), slog.String("error", derr.Error()))
			}
		}
	}()

	if err := body(draft, result, batchErrs); err != nil {
		return nil, err
	}

	result.Errors = dto.ToRowErrorResponses(batchErrs)
	if batchErrs.HasFatal() {
		logger.Warn("Import batch discarded",
			slog.String("batch_id", result.BatchID),
			slog.String("source", source),
			slog.Int("error_count", len(batchErrs.Rows)))
		return result, batchErrs
	}

	if err := draft.Commit(ctx, fmt.Sprintf("import %s %s", source, result.BatchID)); err != nil {
		return nil, fmt.Errorf("committing draft for batch %s: %w", result.BatchID, err)
	}
	committed = true
	result.Committed = true
	logger.Info("Import batch committed",
		slog.String("batch_id", result.BatchID),
		slog.String("source", source),
		slog.Int("created", len(result.Created)),
		slog.Int("merged", len(result.Merged)),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

// RunStatement reconciles a flat statement feed. Rows are grouped by the
// multi-row aggregator; a row the open group cannot absorb finishes the group
// and is replayed as the first row of the next one.
func (s *importService) RunStatement(ctx context.Context, source string, rows []domain.Row) (*dto.BatchResult, error) {
	return s.run(ctx, source, func(draft portsrepo.Draft, result *dto.BatchResult, batchErrs *apperrors.BatchError) error {
		agg := NewAggregator(s.cfg.Accounts, s.cfg.HomeCurrency)
		matcher := NewEntryMatcher(draft)
		merger := NewTransactionMerger(draft)

		var open *Accumulator
		finishOpen := func() {
			t, err := agg.Finish(open)
			line := open.header.Line
			open = nil
			if err != nil {
				batchErrs.Add(line, "", err)
				return
			}
			s.reconcileStatementTransaction(ctx, draft, matcher, merger, t, line, result, batchErrs)
		}

		for _, row := range rows {
			if open == nil {
				acc, err := agg.BeginGroup(row)
				if err != nil {
					batchErrs.Add(row.Line, "", err)
					continue
				}
				open = acc
				continue
			}

			res, err := agg.Feed(open, row)
			switch res {
			case FeedContinue:
				// absorbed
			case FeedRejected:
				batchErrs.Add(row.Line, "", err)
			case FeedTerminal:
				finishOpen()
				acc, err := agg.BeginGroup(row)
				if err != nil {
					batchErrs.Add(row.Line, "", err)
					continue
				}
				open = acc
			}
		}
		if open != nil {
			finishOpen()
		}
		return nil
	})
}

// reconcileStatementTransaction takes one pending transaction through the
// validate -> match -> merge -> re-validate sequence against the draft.
func (s *importService) reconcileStatementTransaction(ctx context.Context, draft portsrepo.Draft, matcher *EntryMatcher, merger *TransactionMerger, t *domain.Transaction, line int, result *dto.BatchResult, batchErrs *apperrors.BatchError) {
	bankEntries := t.EntriesForAccount(s.cfg.Accounts.Bank)
	if len(bankEntries) == 0 {
		batchErrs.Add(line, "", fmt.Errorf("%w: transaction has no bank leg", apperrors.ErrParse))
		return
	}
	anchor := bankEntries[0]

	// A row whose external id is already in the ledger was fully imported by
	// an earlier run.
	if anchor.UniqueID != "" {
		exists, err := draft.EntryExistsWithUniqueID(ctx, anchor.UniqueID)
		if err != nil {
			batchErrs.Add(line, "", err)
			return
		}
		if exists {
			result.Skipped++
			return
		}
	}

	if err := ValidateTransaction(t); err != nil {
		batchErrs.Add(line, "", err)
		return
	}

	cand, err := matcher.FindMatch(ctx, s.cfg.Accounts.Bank, -anchor.Amount, t.Date, s.cfg.WindowDays, nil)
	if err != nil {
		batchErrs.Add(line, "", err)
		return
	}
	if cand == nil {
		if err := draft.SaveTransaction(ctx, t); err != nil {
			batchErrs.Add(line, "", err)
			return
		}
		result.Created = append(result.Created, dto.ToTransactionSummary(t, ""))
		return
	}

	merged, err := merger.Merge(ctx, t, anchor.EntryID, cand)
	if errors.Is(err, apperrors.ErrMergeConflict) {
		// Reported, both transactions left standing for manual resolution.
		batchErrs.Add(line, "", err)
		if serr := draft.SaveTransaction(ctx, t); serr != nil {
			batchErrs.Add(line, "", serr)
			return
		}
		result.Created = append(result.Created, dto.ToTransactionSummary(t, ""))
		return
	}
	if err != nil {
		batchErrs.Add(line, "", err)
		return
	}
	result.Merged = append(result.Merged, dto.ToTransactionSummary(merged, ""))
}

// RunBankDownload ingests a flat bank account download. The bank knows the
// movement but not its purpose, so each unknown row posts a two-entry
// placeholder transaction: the bank leg plus a balancing leg on the unmatched
// account. A later statement import finds the placeholder's bank leg and
// replaces the unmatched leg with the real detail. Rows whose movement the
// ledger already carries — an earlier download's placeholder or a detailed
// feed transaction of the same amount near the same date — are skipped, which
// is what keeps re-downloads idempotent.
func (s *importService) RunBankDownload(ctx context.Context, source string, rows []domain.Row) (*dto.BatchResult, error) {
	return s.run(ctx, source, func(draft portsrepo.Draft, result *dto.BatchResult, batchErrs *apperrors.BatchError) error {
		matcher := NewEntryMatcher(draft)

		for _, row := range rows {
			if row.Kind != domain.RowPayment {
				batchErrs.Add(row.Line, "", fmt.Errorf("%w: expected a payment row in a bank download, got %q",
					apperrors.ErrParse, row.Kind))
				continue
			}
			if row.CurrencyCode != s.cfg.HomeCurrency {
				batchErrs.Add(row.Line, "", fmt.Errorf("%w: bank row at line %d is in %s, expected %s",
					apperrors.ErrUnsupportedData, row.Line, row.CurrencyCode, s.cfg.HomeCurrency))
				continue
			}

			cand, err := matcher.FindMovement(ctx, s.cfg.Accounts.Bank, row.Amount, row.Date, s.cfg.WindowDays)
			if err != nil {
				batchErrs.Add(row.Line, "", err)
				continue
			}
			if cand != nil {
				result.Skipped++
				continue
			}

			// The placeholder carries no external id: it must stay matchable
			// for the statement import that will bring the detail.
			t := &domain.Transaction{TransactionID: uuid.NewString(), Date: row.Date}
			t.AddEntry(domain.Entry{
				EntryID:   uuid.NewString(),
				AccountID: s.cfg.Accounts.Bank,
				Amount:    row.Amount,
				Memo:      row.Name,
			})
			t.AddEntry(domain.Entry{
				EntryID:   uuid.NewString(),
				AccountID: s.cfg.Accounts.UnmatchedAccount,
				Amount:    -row.Amount,
				Memo:      row.Name,
			})
			if err := ValidateTransaction(t); err != nil {
				batchErrs.Add(row.Line, "", err)
				continue
			}
			if err := draft.SaveTransaction(ctx, t); err != nil {
				batchErrs.Add(row.Line, "", err)
				continue
			}
			result.Created = append(result.Created, dto.ToTransactionSummary(t, ""))
		}
		return nil
	})
}

// RunOrders reconciles a hierarchical order feed: each ORDER header row and
// its following ORDER_ITEM rows form one order group.
func (s *importService) RunOrders(ctx context.Context, source string, rows []domain.Row) (*dto.BatchResult, error) {
	return s.run(ctx, source, func(draft portsrepo.Draft, result *dto.BatchResult, batchErrs *apperrors.BatchError) error {
		builder := NewOrderBuilder(draft, s.cfg.Accounts)
		matcher := NewEntryMatcher(draft)
		merger := NewTransactionMerger(draft)

		for i := 0; i < len(rows); {
			header := rows[i]
			if header.Kind != domain.RowOrder {
				batchErrs.Add(header.Line, header.OrderNumber,
					fmt.Errorf("%w: expected an order header row, got %q", apperrors.ErrParse, header.Kind))
				i++
				continue
			}
			j := i + 1
			for j < len(rows) && rows[j].Kind == domain.RowOrderItem {
				j++
			}
			s.reconcileOrder(ctx, draft, builder, matcher, merger, header, rows[i+1:j], result, batchErrs)
			i = j
		}
		return nil
	})
}

// reconcileOrder rebuilds one order's hierarchy, appends items the ledger does
// not know yet, materializes the new shipment and reconciles it against a
// possible pre-existing charge entry.
func (s *importService) reconcileOrder(ctx context.Context, draft portsrepo.Draft, builder *OrderBuilder, matcher *EntryMatcher, merger *TransactionMerger, header domain.Row, itemRows []domain.Row, result *dto.BatchResult, batchErrs *apperrors.BatchError) {
	orderNumber := header.OrderNumber
	if orderNumber == "" {
		batchErrs.Add(header.Line, "", fmt.Errorf("%w: order header without order number", apperrors.ErrParse))
		return
	}
	if header.CurrencyCode != s.cfg.HomeCurrency {
		batchErrs.Add(header.Line, orderNumber, fmt.Errorf("%w: order at line %d is in %s, expected %s",
			apperrors.ErrUnsupportedData, header.Line, header.CurrencyCode, s.cfg.HomeCurrency))
		return
	}

	order, err := builder.BuildOrder(ctx, orderNumber, header.Date, header.Amount)
	if err != nil {
		batchErrs.Add(header.Line, orderNumber, err)
		return
	}

	slot := &ShipmentSlot{}
	for _, row := range itemRows {
		if row.CurrencyCode != s.cfg.HomeCurrency {
			batchErrs.Add(row.Line, orderNumber, fmt.Errorf("%w: order item at line %d is in %s, expected %s",
				apperrors.ErrUnsupportedData, row.Line, row.CurrencyCode, s.cfg.HomeCurrency))
			return
		}
		if order.FindItem(row.Name, row.Amount) != nil {
			result.Skipped++
			continue
		}
		isReturn, err := isReturnStatus(row.Status)
		if err != nil {
			batchErrs.Add(row.Line, orderNumber, err)
			return
		}
		item := builder.CreateNewItem(order, slot, row.Name, row.Quantity, row.Amount)
		item.CatalogID = row.CatalogID
		if isReturn {
			slot.Shipment.IsReturn = true
		}
		if row.ShippingHandling != 0 {
			if err := slot.Shipment.Postage.Set(row.ShippingHandling); err != nil {
				batchErrs.Add(row.Line, orderNumber, err)
				return
			}
		}
	}

	if slot.Shipment != nil {
		t, err := builder.FinalizeShipment(order, slot.Shipment)
		if err != nil {
			batchErrs.Add(header.Line, orderNumber, err)
			return
		}
		if err := ValidateTransaction(t); err != nil {
			batchErrs.Add(header.Line, orderNumber, err)
			return
		}

		anchor := t.Entries[0] // charge leg, by construction
		exclude := func(e domain.Entry) bool {
			// Entries already tagged with this order belong to its own
			// shipments; they are never a counterpart.
			return e.OrderNumber == orderNumber
		}
		cand, err := matcher.FindMatch(ctx, s.cfg.Accounts.Charge, -anchor.Amount, order.Date, s.cfg.WindowDays, exclude)
		if err != nil {
			batchErrs.Add(header.Line, orderNumber, err)
			return
		}
		switch {
		case cand == nil:
			if err := draft.SaveTransaction(ctx, t); err != nil {
				batchErrs.Add(header.Line, orderNumber, err)
				return
			}
			result.Created = append(result.Created, dto.ToTransactionSummary(t, orderNumber))
		default:
			merged, err := merger.Merge(ctx, t, anchor.EntryID, cand)
			if errors.Is(err, apperrors.ErrMergeConflict) {
				batchErrs.Add(header.Line, orderNumber, err)
				if serr := draft.SaveTransaction(ctx, t); serr != nil {
					batchErrs.Add(header.Line, orderNumber, serr)
					return
				}
				result.Created = append(result.Created, dto.ToTransactionSummary(t, orderNumber))
			} else if err != nil {
				batchErrs.Add(header.Line, orderNumber, err)
				return
			} else {
				slot.Shipment.TransactionID = merged.TransactionID
				result.Merged = append(result.Merged, dto.ToTransactionSummary(merged, orderNumber))
			}
		}
	}

	if err := ValidateOrder(order); err != nil {
		batchErrs.Add(header.Line, orderNumber, err)
	}
}

// isReturnStatus reports whether a feed status string marks a returned
// shipment. A status outside the known vocabulary is unsupported data; the
// importer never guesses.
func isReturnStatus(status string) (bool, error) {
	switch status {
	case "Returned", "Refunded", "Return":
		return true, nil
	case "", "Shipped", "Dispatched", "Delivered":
		return false, nil
	default:
		return false, fmt.Errorf("%w: order status %q", apperrors.ErrUnsupportedData, status)
	}
}
