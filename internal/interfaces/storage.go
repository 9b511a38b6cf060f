package interfaces

import (
	"context"

	"github.com/jdelorme/sillage/internal/models"
)

// StorageManager coordinates the storage backends.
type StorageManager interface {
	WatchlistStore() WatchlistStore

	// Lifecycle
	Close() error
}

// WatchlistStore persists the user's watchlist.
type WatchlistStore interface {
	GetWatchlist(ctx context.Context, name string) (*models.Watchlist, error)
	SaveWatchlist(ctx context.Context, watchlist *models.Watchlist) error
	DeleteWatchlist(ctx context.Context, name string) error
}
