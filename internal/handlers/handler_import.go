package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	portssvc "github.com/ledgerops/recon_app/internal/core/ports/services"
	"github.com/ledgerops/recon_app/internal/dto"
	"github.com/ledgerops/recon_app/internal/feed"
	"github.com/ledgerops/recon_app/internal/middleware"
)

// ImportHandler handles HTTP requests for import batches.
type ImportHandler struct {
	importerSvc portssvc.ImporterSvcFacade
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importerSvc portssvc.ImporterSvcFacade) *ImportHandler {
	return &ImportHandler{importerSvc: importerSvc}
}

// RunImport accepts a batch of tokenized rows and reconciles them into the
// ledger. A batch with fatal errors is reported with 422 and is not committed;
// the response body carries the full structured error list either way.
func (h *ImportHandler) RunImport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RunImport", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	rows := make([]domain.Row, 0, len(req.Rows))
	for _, rr := range req.Rows {
		minorUnit, err := feed.MinorUnit(rr.CurrencyCode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		row, err := rr.ToDomainRow(minorUnit)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rows = append(rows, row)
	}

	var (
		result *dto.BatchResult
		err    error
	)
	switch req.Feed {
	case "orders":
		result, err = h.importerSvc.RunOrders(c.Request.Context(), req.Source, rows)
	case "bank":
		result, err = h.importerSvc.RunBankDownload(c.Request.Context(), req.Source, rows)
	default:
		result, err = h.importerSvc.RunStatement(c.Request.Context(), req.Source, rows)
	}

	var batchErr *apperrors.BatchError
	switch {
	case errors.As(err, &batchErr):
		logger.Warn("Import batch rejected",
			slog.String("source", req.Source),
			slog.Int("error_count", len(batchErr.Rows)))
		c.JSON(http.StatusUnprocessableEntity, result)
	case err != nil:
		logger.Error("Import batch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run import batch"})
	default:
		logger.Info("Import batch processed",
			slog.String("batch_id", result.BatchID),
			slog.Int("created", len(result.Created)),
			slog.Int("merged", len(result.Merged)))
		c.JSON(http.StatusOK, result)
	}
}
