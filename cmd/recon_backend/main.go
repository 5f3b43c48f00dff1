package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	limiter "github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ledgerops/recon_app/internal/adapters/database/pgsql"
	"github.com/ledgerops/recon_app/internal/core/services"
	"github.com/ledgerops/recon_app/internal/handlers"
	"github.com/ledgerops/recon_app/internal/middleware"
	"github.com/ledgerops/recon_app/internal/platform/config"
	"github.com/ledgerops/recon_app/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handlers.RegisterValidations(); err != nil {
		logger.Error("Failed to register request validations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("error", err.Error()))
		os.Exit(1)
	}
	limiterInstance := limiter.New(memorystore.NewStore(), rate)

	r.GET("/health", handlers.GetHealth)

	setupAPIV1Routes(r, cfg, dbPool, limiterInstance, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received, draining connections...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped.")
}

func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, limiterInstance *limiter.Limiter, logger *slog.Logger) {
	v1 := r.Group("/api/v1",
		middleware.RateLimit(limiterInstance),
		middleware.TokenAuthMiddleware(cfg.APIToken),
	)

	addImportAPI(v1, cfg, dbPool, logger)
}

func addImportAPI(v1 *gin.RouterGroup, cfg *config.Config, dbPool *pgxpool.Pool, logger *slog.Logger) {
	ledgerRepo := pgsql.NewLedgerRepository(dbPool)
	importerSvc, err := services.NewImportService(ledgerRepo, services.ImportConfig{
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
		logger.Error("Failed to build import service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	importHandler := handlers.NewImportHandler(importerSvc)

	imports := v1.Group("/imports")
	imports.POST("/", importHandler.RunImport)
}

// runMigrations applies pending schema migrations from the migrations
// directory. A temporary database/sql connection is used because migrate
// speaks database/sql, not pgx pools.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
