package services

import (
	"context"

	"github.com/ledgerops/recon_app/internal/core/domain"
	"github.com/ledgerops/recon_app/internal/dto"
)

// ImporterSvcFacade is the service boundary the handlers and the CLI talk to.
// One call processes one ordered stream of rows to completion inside a single
// draft; the result lists every created and merged transaction plus the
// structured errors found along the way.
type ImporterSvcFacade interface {
	// RunStatement reconciles a flat statement feed (payments, carts,
	// currency conversions).
	RunStatement(ctx context.Context, source string, rows []domain.Row) (*dto.BatchResult, error)

	// RunOrders reconciles a hierarchical order feed (order -> shipments -> items).
	RunOrders(ctx context.Context, source string, rows []domain.Row) (*dto.BatchResult, error)

	// RunBankDownload ingests a flat bank account download, posting a
	// placeholder transaction for every movement the ledger does not know yet.
	RunBankDownload(ctx context.Context, source string, rows []domain.Row) (*dto.BatchResult, error)
}
