package storage

import (
	"fmt"

	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/interfaces"
)

// Manager implements StorageManager over a single BadgerHold store.
type Manager struct {
	store     *Store
	watchlist interfaces.WatchlistStore
	logger    *common.Logger
}

// NewManager opens the storage areas configured in config.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := NewStore(logger, config.Storage.Watchlist.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open watchlist storage: %w", err)
	}

	return &Manager{
		store:     store,
		watchlist: NewWatchlistStorage(store, logger),
		logger:    logger,
	}, nil
}

// WatchlistStore returns the watchlist store.
func (m *Manager) WatchlistStore() interfaces.WatchlistStore {
	return m.watchlist
}

// Close closes all storage backends.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
