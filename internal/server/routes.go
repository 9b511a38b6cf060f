package server

import (
	"net/http"
	"strings"

	"github.com/jdelorme/sillage/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Stocks
	mux.HandleFunc("/api/stocks/", s.routeStocks)
	mux.HandleFunc("/api/search", s.handleSearch)

	// Watchlist
	mux.HandleFunc("/api/watchlist", s.handleWatchlistRoot)
	mux.HandleFunc("/api/watchlist/", s.routeWatchlist)
}

// routeStocks dispatches /api/stocks/{symbol}/* to the appropriate handler.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/stocks/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	symbol := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "returns":
		s.handleStockReturns(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeWatchlist dispatches /api/watchlist/{symbol} to the item handler.
func (s *Server) routeWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimPrefix(r.URL.Path, "/api/watchlist/")
	if symbol == "" {
		s.handleWatchlistRoot(w, r)
		return
	}
	s.handleWatchlistItem(w, r, symbol)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
