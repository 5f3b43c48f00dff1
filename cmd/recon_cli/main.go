// Command recon_cli imports scraped feed exports from the command line.
// A dry run reconciles against an empty in-memory ledger and prints what an
// API import would have done, without touching Postgres.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerops/recon_app/internal/adapters/database/memory"
	"github.com/ledgerops/recon_app/internal/adapters/database/pgsql"
	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	portsrepo "github.com/ledgerops/recon_app/internal/core/ports/repositories"
	"github.com/ledgerops/recon_app/internal/core/services"
	"github.com/ledgerops/recon_app/internal/dto"
	"github.com/ledgerops/recon_app/internal/feed"
	"github.com/ledgerops/recon_app/internal/middleware"
	"github.com/ledgerops/recon_app/internal/platform/config"
	"github.com/ledgerops/recon_app/pkg/database"
)

var (
	source     string
	feedKind   string
	dryRun     bool
	windowDays int
)

var rootCmd = &cobra.Command{
	Use:   "recon",
	Short: "Ledger reconciliation importer",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a CSV feed export and reconcile it into the ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), args[0])
	},
}

func init() {
	importCmd.Flags().StringVar(&source, "source", "", "feed source: paypal, ebay or amazon")
	importCmd.Flags().StringVar(&feedKind, "feed", "statement", "feed kind: statement, orders or bank")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "reconcile against an empty in-memory ledger instead of Postgres")
	importCmd.Flags().IntVar(&windowDays, "window-days", 0, "override the forward matching window in days")
	importCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runImport(ctx context.Context, path string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx = middleware.ContextWithLogger(ctx, logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if windowDays > 0 {
		cfg.MatchWindowDays = windowDays
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var rows []domain.Row
	switch feedKind {
	case "statement":
		rows, err = feed.ReadStatementCSV(f)
	case "orders":
		rows, err = feed.ReadOrderReportCSV(f)
	case "bank":
		rows, err = feed.ReadBankDownloadCSV(f)
	default:
		return fmt.Errorf("unknown feed kind %q", feedKind)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	ledger, cleanup, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	importerSvc, err := services.NewImportService(ledger, services.ImportConfig{
		Accounts: services.AccountSet{
			Bank:             cfg.BankAccountID,
			Charge:           cfg.ChargeAccountID,
			Purchases:        cfg.PurchasesAccountID,
			Fees:             cfg.FeesAccountID,
			Postage:          cfg.PostageAccountID,
			Giftcard:         cfg.GiftcardAccountID,
			Promotion:        cfg.PromotionAccountID,
			UnmatchedAccount: cfg.UnmatchedAccountID,
		},
		HomeCurrency: cfg.HomeCurrency,
		WindowDays:   cfg.MatchWindowDays,
	})
	if err != nil {
		return err
	}

	var result *dto.BatchResult
	switch feedKind {
	case "orders":
		result, err = importerSvc.RunOrders(ctx, source, rows)
	case "bank":
		result, err = importerSvc.RunBankDownload(ctx, source, rows)
	default:
		result, err = importerSvc.RunStatement(ctx, source, rows)
	}

	var batchErr *apperrors.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		return err
	}

	out, merr := json.MarshalIndent(result, "", "  ")
	if merr != nil {
		return merr
	}
	fmt.Println(string(out))

	if batchErr != nil && batchErr.HasFatal() {
		return fmt.Errorf("batch not committed: %d row error(s)", len(batchErr.Rows))
	}
	return nil
}

// openLedger picks the backing store. Dry runs get a fresh in-memory ledger
// seeded with the configured accounts in the home currency.
func openLedger(ctx context.Context, cfg *config.Config) (portsrepo.LedgerRepository, func(), error) {
	if dryRun {
		minorUnit, err := feed.MinorUnit(cfg.HomeCurrency)
		if err != nil {
			return nil, nil, err
		}
		ledger := memory.NewLedger()
		seed := []struct {
			id          string
			name        string
			accountType domain.AccountType
		}{
			{cfg.BankAccountID, "Bank", domain.Capital},
			{cfg.ChargeAccountID, "Charge card", domain.Capital},
			{cfg.PurchasesAccountID, "Purchases", domain.IncomeExpense},
			{cfg.FeesAccountID, "Processor fees", domain.IncomeExpense},
			{cfg.PostageAccountID, "Postage and packing", domain.IncomeExpense},
			{cfg.GiftcardAccountID, "Giftcard", domain.IncomeExpense},
			{cfg.PromotionAccountID, "Promotion", domain.IncomeExpense},
			{cfg.UnmatchedAccountID, "Unmatched", domain.Unmatched},
		}
		for _, s := range seed {
			ledger.AddAccount(domain.Account{
				AccountID:    s.id,
				Name:         s.name,
				AccountType:  s.accountType,
				CurrencyCode: cfg.HomeCurrency,
				MinorUnit:    minorUnit,
			})
		}
		return ledger, func() {}, nil
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, nil, err
	}
	return pgsql.NewLedgerRepository(pool), func() { database.ClosePgxPool(pool) }, nil
}
