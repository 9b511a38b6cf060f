// Package interfaces defines service contracts for sillage
package interfaces

import (
	"context"

	"github.com/jdelorme/sillage/internal/models"
)

// ChartClient fetches a raw daily price history plus quote metadata from
// the primary market-data provider.
type ChartClient interface {
	// GetChart retrieves ~13 months of daily price history for a symbol.
	// The returned reference price is NaN when the provider omits it.
	GetChart(ctx context.Context, symbol string) (*models.PriceSeries, float64, error)
}

// FundamentalsClient fetches the primary fundamentals payload.
type FundamentalsClient interface {
	GetFundamentals(ctx context.Context, symbol string) (*models.PrimaryFundamentals, error)
}

// SearchClient looks up equity symbols by free-text query.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]models.SymbolMatch, error)
}

// ProfileClient fetches the secondary fundamentals payload. Lookups are
// best-effort: callers absorb every error from this client.
type ProfileClient interface {
	GetProfile(ctx context.Context, symbol string) (*models.SecondaryFundamentals, error)
}
