// Package stock orchestrates per-symbol return computation
package stock

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/interfaces"
	"github.com/jdelorme/sillage/internal/models"
	"github.com/jdelorme/sillage/internal/returns"
	"github.com/jdelorme/sillage/internal/series"
)

// Service implements StockService. The price series and primary
// fundamentals are fetched concurrently; the secondary fundamentals fetch
// is dependent and entirely best-effort. All derivation after the fetches
// is pure and synchronous.
type Service struct {
	chart   interfaces.ChartClient
	funds   interfaces.FundamentalsClient
	search  interfaces.SearchClient
	profile interfaces.ProfileClient
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new stock service.
// profile may be nil when the secondary fundamentals source is not
// configured, in which case the merge runs on primary data alone.
func NewService(chart interfaces.ChartClient, funds interfaces.FundamentalsClient, search interfaces.SearchClient, profile interfaces.ProfileClient, logger *common.Logger) *Service {
	return &Service{
		chart:   chart,
		funds:   funds,
		search:  search,
		profile: profile,
		logger:  logger,
		now:     time.Now,
	}
}

// GetStockReturns fetches the raw inputs for one symbol and derives the
// full TSR record. A failed or empty price series aborts the whole symbol;
// fundamentals failures never do.
func (s *Service) GetStockReturns(ctx context.Context, symbol string) (*models.StockReturns, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var (
		wg        sync.WaitGroup
		priceData *models.PriceSeries
		reference = math.NaN()
		chartErr  error
		primary   *models.PrimaryFundamentals
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		priceData, reference, chartErr = s.chart.GetChart(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		p, err := s.funds.GetFundamentals(ctx, symbol)
		if err != nil {
			s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Primary fundamentals unavailable")
			return
		}
		primary = p
	}()
	wg.Wait()

	if chartErr != nil {
		return nil, fmt.Errorf("failed to fetch price series for %s: %w", symbol, chartErr)
	}

	resolver, err := series.NewResolver(priceData)
	if err != nil {
		return nil, fmt.Errorf("malformed price series for %s: %w", symbol, err)
	}

	record, err := returns.Aggregate(resolver, reference, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute returns for %s: %w", symbol, err)
	}

	record.Fundamentals = returns.MergeFundamentals(primary, s.fetchSecondary(ctx, symbol))

	s.logger.Debug().
		Str("symbol", symbol).
		Float64("current_price", record.CurrentPrice).
		Str("fundamentals_source", record.Fundamentals.Source).
		Msg("Stock returns computed")

	return record, nil
}

// fetchSecondary performs the best-effort secondary fundamentals lookup.
// Missing credentials, transport failures and bad payloads all degrade to
// nil; they never fail the request.
func (s *Service) fetchSecondary(ctx context.Context, symbol string) *models.SecondaryFundamentals {
	if s.profile == nil {
		return nil
	}
	secondary, err := s.profile.GetProfile(ctx, symbol)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Secondary fundamentals unavailable")
		return nil
	}
	return secondary
}

// SearchSymbols looks up equity symbols by name or ticker fragment.
// Queries shorter than 2 characters return an empty result set.
func (s *Service) SearchSymbols(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []models.SymbolMatch{}, nil
	}
	matches, err := s.search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("symbol search failed: %w", err)
	}
	return matches, nil
}

// Ensure Service implements StockService
var _ interfaces.StockService = (*Service)(nil)
