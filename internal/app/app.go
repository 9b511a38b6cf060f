// Package app wires configuration, clients, storage, and services
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jdelorme/sillage/internal/clients/fmp"
	"github.com/jdelorme/sillage/internal/clients/yahoo"
	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/interfaces"
	"github.com/jdelorme/sillage/internal/services/stock"
	"github.com/jdelorme/sillage/internal/services/watchlist"
	"github.com/jdelorme/sillage/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	StockService     interfaces.StockService
	WatchlistService interfaces.WatchlistService
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

// NewApp initializes all services, clients, and storage.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Load configuration - check provided path, SILLAGE_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("SILLAGE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "sillage.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/sillage.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Watchlist.Path != "" && !filepath.IsAbs(config.Storage.Watchlist.Path) {
		config.Storage.Watchlist.Path = filepath.Join(binDir, config.Storage.Watchlist.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	// The secondary fundamentals source is optional; without a key the
	// merge runs on primary data alone.
	fmpKey := common.ResolveAPIKey([]string{"FMP_API_KEY", "SILLAGE_FMP_API_KEY"}, config.Clients.FMP.APIKey)
	var profileClient interfaces.ProfileClient
	if fmpKey != "" {
		profileClient = fmp.NewClient(fmpKey,
			fmp.WithBaseURL(config.Clients.FMP.BaseURL),
			fmp.WithLogger(logger),
			fmp.WithRateLimit(config.Clients.FMP.RateLimit),
			fmp.WithTimeout(config.Clients.FMP.GetTimeout()),
		)
	} else {
		logger.Warn().Msg("FMP API key not configured - secondary fundamentals disabled")
	}

	app := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		StockService:     stock.NewService(yahooClient, yahooClient, yahooClient, profileClient, logger),
		WatchlistService: watchlist.NewService(storageManager, logger),
		StartupTime:      time.Now(),
	}

	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("environment", config.Environment).
		Msg("Application initialized")

	return app, nil
}

// Close releases all resources.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
		}
	}
}
