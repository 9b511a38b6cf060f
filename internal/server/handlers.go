package server

import (
	"errors"
	"net/http"

	"github.com/jdelorme/sillage/internal/models"
	"github.com/jdelorme/sillage/internal/series"
)

// handleStockReturns handles GET /api/stocks/{symbol}/returns.
// Failures are isolated per symbol: a series with no usable close or a
// failed upstream fetch yields a "data unavailable" error for this symbol
// only, never a partial record.
func (s *Server) handleStockReturns(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	record, err := s.app.StockService.GetStockReturns(r.Context(), symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Stock returns unavailable")
		if errors.Is(err, series.ErrNoValidPrice) {
			WriteError(w, http.StatusNotFound, "Data unavailable for "+symbol)
			return
		}
		WriteError(w, http.StatusBadGateway, "Data unavailable for "+symbol)
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// handleSearch handles GET /api/search?q={query}.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")

	matches, err := s.app.StockService.SearchSymbols(r.Context(), query)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("Symbol search failed")
		// Search degrades to an empty result set rather than an error page
		WriteJSON(w, http.StatusOK, map[string]interface{}{"results": []models.SymbolMatch{}})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"results": matches})
}

// handleWatchlistRoot handles GET and POST /api/watchlist.
func (s *Server) handleWatchlistRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		wl, err := s.app.WatchlistService.GetWatchlist(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	case http.MethodPost:
		var item models.WatchlistItem
		if !DecodeJSON(w, r, &item) {
			return
		}
		wl, err := s.app.WatchlistService.AddOrUpdateItem(r.Context(), &item)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistItem handles PUT and DELETE /api/watchlist/{symbol}.
func (s *Server) handleWatchlistItem(w http.ResponseWriter, r *http.Request, symbol string) {
	switch r.Method {
	case http.MethodPut:
		var item models.WatchlistItem
		if !DecodeJSON(w, r, &item) {
			return
		}
		item.Symbol = symbol
		wl, err := s.app.WatchlistService.AddOrUpdateItem(r.Context(), &item)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	case http.MethodDelete:
		wl, err := s.app.WatchlistService.RemoveItem(r.Context(), symbol)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}
