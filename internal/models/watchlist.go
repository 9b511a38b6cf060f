package models

import (
	"strings"
	"time"
)

// Watchlist is the user's curated list of tracked equities.
type Watchlist struct {
	Name      string          `json:"name"`
	Items     []WatchlistItem `json:"items"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WatchlistItem is a single tracked equity.
type WatchlistItem struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindBySymbol returns the item with the given symbol (case-insensitive)
// and its index, or (nil, -1) when not present.
func (w *Watchlist) FindBySymbol(symbol string) (*WatchlistItem, int) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for i := range w.Items {
		if strings.ToUpper(w.Items[i].Symbol) == symbol {
			return &w.Items[i], i
		}
	}
	return nil, -1
}
