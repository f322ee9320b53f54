// Package app wires configuration, storage, clients, and services into the
// shared core used by every command verb.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/bobmcallan/folio/internal/clients/eodhd"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/services/history"
	"github.com/bobmcallan/folio/internal/services/mailer"
	"github.com/bobmcallan/folio/internal/services/metrics"
	"github.com/bobmcallan/folio/internal/services/report"
	"github.com/bobmcallan/folio/internal/services/valuation"
	"github.com/bobmcallan/folio/internal/storage"
)

// App holds all initialized services, clients, and storage.
// It is the shared core used by every cmd/folio verb.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	PriceFeed        interfaces.PriceFeed
	Mailer           interfaces.EmailSender
	ValuationService interfaces.ValuationService
	HistoryService   interfaces.HistoryService
	MetricsService   interfaces.MetricsService
	ReportService    interfaces.ReportService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, storage, the price feed client,
// and all services. configPath may be empty, in which case the default
// resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Secrets may live in a .env file during development
	_ = godotenv.Load()

	binDir := getBinaryDir()

	// Load configuration - check provided path, FOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var priceFeed interfaces.PriceFeed
	if config.Feed.APIKey != "" {
		priceFeed = eodhd.NewClient(config.Feed.APIKey,
			eodhd.WithBaseURL(config.Feed.BaseURL),
			eodhd.WithExchange(config.Feed.Exchange),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Feed.RateLimit),
			eodhd.WithTimeout(config.Feed.GetTimeout()),
		)
	} else {
		logger.Warn().Msg("Price feed API key not configured - live quotes will be unavailable")
	}

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		PriceFeed:        priceFeed,
		Mailer:           mailer.NewService(config.Mail, logger),
		ValuationService: valuation.NewService(logger),
		HistoryService:   history.NewService(config.Synthesis, logger),
		MetricsService:   metrics.NewService(logger),
		ReportService:    report.NewService(storageManager, logger),
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
