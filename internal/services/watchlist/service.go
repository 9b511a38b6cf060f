// Package watchlist provides watchlist management services
package watchlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/interfaces"
	"github.com/jdelorme/sillage/internal/models"
)

// DefaultName is the storage key for the single user watchlist.
const DefaultName = "default"

// defaultItems seed a fresh watchlist on first access.
var defaultItems = []models.WatchlistItem{
	{Symbol: "ORA.PA", Name: "Orange"},
	{Symbol: "VOD.L", Name: "Vodafone"},
	{Symbol: "TEF.MC", Name: "Telefonica"},
	{Symbol: "EXA.PA", Name: "EXAIL Technologies"},
}

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// Service implements WatchlistService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new watchlist service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetWatchlist retrieves the watchlist, seeding the defaults when none
// has been saved yet.
func (s *Service) GetWatchlist(ctx context.Context) (*models.Watchlist, error) {
	wl, err := s.storage.WatchlistStore().GetWatchlist(ctx, DefaultName)
	if err == nil {
		return wl, nil
	}

	wl = s.seededWatchlist()
	if err := s.storage.WatchlistStore().SaveWatchlist(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to seed watchlist: %w", err)
	}
	s.logger.Info().Int("items", len(wl.Items)).Msg("Watchlist seeded with defaults")
	return wl, nil
}

// AddOrUpdateItem adds a new item or updates an existing one (upsert keyed
// on symbol).
func (s *Service) AddOrUpdateItem(ctx context.Context, item *models.WatchlistItem) (*models.Watchlist, error) {
	item.Symbol = strings.ToUpper(strings.TrimSpace(item.Symbol))
	if item.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	wl, err := s.GetWatchlist(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	existing, idx := wl.FindBySymbol(item.Symbol)
	if idx >= 0 {
		// Update existing: preserve AddedAt
		item.AddedAt = existing.AddedAt
		item.UpdatedAt = now
		wl.Items[idx] = *item
	} else {
		item.AddedAt = now
		item.UpdatedAt = now
		wl.Items = append(wl.Items, *item)
	}

	if err := s.storage.WatchlistStore().SaveWatchlist(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.logger.Info().Str("symbol", item.Symbol).Msg("Watchlist item upserted")
	return wl, nil
}

// RemoveItem removes a stock from the watchlist by symbol
func (s *Service) RemoveItem(ctx context.Context, symbol string) (*models.Watchlist, error) {
	wl, err := s.GetWatchlist(ctx)
	if err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	_, idx := wl.FindBySymbol(symbol)
	if idx < 0 {
		return nil, fmt.Errorf("symbol '%s' not found in watchlist", symbol)
	}

	wl.Items = append(wl.Items[:idx], wl.Items[idx+1:]...)

	if err := s.storage.WatchlistStore().SaveWatchlist(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.logger.Info().Str("symbol", symbol).Msg("Watchlist item removed")
	return wl, nil
}

// seededWatchlist builds the initial watchlist.
func (s *Service) seededWatchlist() *models.Watchlist {
	now := time.Now()
	items := make([]models.WatchlistItem, len(defaultItems))
	copy(items, defaultItems)
	for i := range items {
		items[i].AddedAt = now
		items[i].UpdatedAt = now
	}
	return &models.Watchlist{
		Name:  DefaultName,
		Items: items,
	}
}
