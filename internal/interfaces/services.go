package interfaces

import (
	"context"

	"github.com/jdelorme/sillage/internal/models"
)

// StockService computes the derived return record for a symbol.
type StockService interface {
	// GetStockReturns fetches the price series and fundamentals for a
	// symbol and derives the full TSR record. Failures are isolated per
	// symbol; no partial record is ever returned.
	GetStockReturns(ctx context.Context, symbol string) (*models.StockReturns, error)

	// SearchSymbols looks up equity symbols by name or ticker fragment.
	SearchSymbols(ctx context.Context, query string) ([]models.SymbolMatch, error)
}

// WatchlistService manages the user's curated list of tracked equities.
type WatchlistService interface {
	// GetWatchlist returns the watchlist, seeding defaults when none exists.
	GetWatchlist(ctx context.Context) (*models.Watchlist, error)

	// AddOrUpdateItem upserts an item keyed on symbol.
	AddOrUpdateItem(ctx context.Context, item *models.WatchlistItem) (*models.Watchlist, error)

	// RemoveItem removes an item by symbol.
	RemoveItem(ctx context.Context, symbol string) (*models.Watchlist, error)
}
