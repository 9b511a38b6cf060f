package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/models"
)

type watchlistStorage struct {
	store  *Store
	logger *common.Logger
}

// NewWatchlistStorage creates a new WatchlistStore backed by BadgerHold.
func NewWatchlistStorage(store *Store, logger *common.Logger) *watchlistStorage {
	return &watchlistStorage{store: store, logger: logger}
}

func (s *watchlistStorage) GetWatchlist(_ context.Context, name string) (*models.Watchlist, error) {
	var watchlist models.Watchlist
	err := s.store.db.Get(name, &watchlist)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("watchlist '%s' not found", name)
		}
		return nil, fmt.Errorf("failed to get watchlist '%s': %w", name, err)
	}
	return &watchlist, nil
}

func (s *watchlistStorage) SaveWatchlist(_ context.Context, watchlist *models.Watchlist) error {
	// Read existing to preserve CreatedAt and increment Version
	var existing models.Watchlist
	err := s.store.db.Get(watchlist.Name, &existing)
	if err == nil {
		watchlist.CreatedAt = existing.CreatedAt
		watchlist.Version = existing.Version + 1
	} else {
		watchlist.Version = 1
		if watchlist.CreatedAt.IsZero() {
			watchlist.CreatedAt = time.Now()
		}
	}

	watchlist.UpdatedAt = time.Now()

	if err := s.store.db.Upsert(watchlist.Name, watchlist); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	s.logger.Debug().Str("name", watchlist.Name).Int("version", watchlist.Version).Msg("Watchlist saved")
	return nil
}

func (s *watchlistStorage) DeleteWatchlist(_ context.Context, name string) error {
	err := s.store.db.Delete(name, models.Watchlist{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete watchlist '%s': %w", name, err)
	}
	s.logger.Debug().Str("name", name).Msg("Watchlist deleted")
	return nil
}
