package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// APIToken guards the import API; empty disables auth (development only).
	APIToken string
	// RateLimit is a ulule/limiter formatted rate, e.g. "30-M".
	RateLimit string
	// ShutdownTimeout bounds graceful server shutdown.
	ShutdownTimeout time.Duration

	// HomeCurrency is the currency of the bank/charge accounts.
	HomeCurrency string
	// MatchWindowDays is the forward-only matching window of the entry matcher.
	MatchWindowDays int

	// Fixed account ids the importer posts to.
	BankAccountID      string
	ChargeAccountID    string
	PurchasesAccountID string
	FeesAccountID      string
	PostageAccountID   string
	GiftcardAccountID  string
	PromotionAccountID string
	UnmatchedAccountID string
}

// LoadConfig loads configuration from environment variables and a .env file
// if one is present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("API_TOKEN", "")
	viper.SetDefault("RATE_LIMIT", "30-M")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("HOME_CURRENCY", "USD")
	viper.SetDefault("MATCH_WINDOW_DAYS", 5)
	viper.SetDefault("BANK_ACCOUNT_ID", "bank")
	viper.SetDefault("CHARGE_ACCOUNT_ID", "charge-card")
	viper.SetDefault("PURCHASES_ACCOUNT_ID", "purchases")
	viper.SetDefault("FEES_ACCOUNT_ID", "processor-fees")
	viper.SetDefault("POSTAGE_ACCOUNT_ID", "postage")
	viper.SetDefault("GIFTCARD_ACCOUNT_ID", "giftcard")
	viper.SetDefault("PROMOTION_ACCOUNT_ID", "promotion")
	viper.SetDefault("UNMATCHED_ACCOUNT_ID", "unmatched")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.APIToken = viper.GetString("API_TOKEN")
	if cfg.APIToken == "" {
		log.Println("Warning: API_TOKEN not set. The import API will accept unauthenticated requests.")
	}
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	shutdownStr := viper.GetString("SHUTDOWN_TIMEOUT")
	shutdownTimeout, err := time.ParseDuration(shutdownStr)
	if err != nil {
		shutdownTimeout = 10 * time.Second
		log.Printf("Warning: Invalid value for SHUTDOWN_TIMEOUT (%q). Defaulting to %s.\n", shutdownStr, shutdownTimeout)
	}
	cfg.ShutdownTimeout = shutdownTimeout

	cfg.HomeCurrency = viper.GetString("HOME_CURRENCY")
	cfg.MatchWindowDays = viper.GetInt("MATCH_WINDOW_DAYS")
	if cfg.MatchWindowDays <= 0 {
		cfg.MatchWindowDays = 5
		log.Printf("Warning: MATCH_WINDOW_DAYS must be positive. Defaulting to %d.\n", cfg.MatchWindowDays)
	}

	cfg.BankAccountID = viper.GetString("BANK_ACCOUNT_ID")
	cfg.ChargeAccountID = viper.GetString("CHARGE_ACCOUNT_ID")
	cfg.PurchasesAccountID = viper.GetString("PURCHASES_ACCOUNT_ID")
	cfg.FeesAccountID = viper.GetString("FEES_ACCOUNT_ID")
	cfg.PostageAccountID = viper.GetString("POSTAGE_ACCOUNT_ID")
	cfg.GiftcardAccountID = viper.GetString("GIFTCARD_ACCOUNT_ID")
	cfg.PromotionAccountID = viper.GetString("PROMOTION_ACCOUNT_ID")
	cfg.UnmatchedAccountID = viper.GetString("UNMATCHED_ACCOUNT_ID")

	return cfg, nil
}
