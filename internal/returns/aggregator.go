// Package returns derives TSR metrics from a resolved price series
package returns

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jdelorme/sillage/internal/models"
	"github.com/jdelorme/sillage/internal/series"
)

// Window is a named lookback: a single month offset for to-date windows,
// or a start/end pair for rolling windows. Static configuration, never
// derived from data.
type Window struct {
	Label       string
	StartMonths int // months ago at the window start
	EndMonths   int // months ago at the window end; 0 = now
}

// ToDateWindows are the fixed look-backs measured against the current price.
var ToDateWindows = []Window{
	{Label: "1M", StartMonths: 1},
	{Label: "3M", StartMonths: 3},
	{Label: "6M", StartMonths: 6},
	{Label: "1Y", StartMonths: 12},
}

// RollingWindows are four consecutive non-overlapping quarters tiling the
// trailing year. Order and boundaries are observable behavior: the end of
// each window is the start of the next.
var RollingWindows = []Window{
	{Label: "12-9M", StartMonths: 12, EndMonths: 9},
	{Label: "9-6M", StartMonths: 9, EndMonths: 6},
	{Label: "6-3M", StartMonths: 6, EndMonths: 3},
	{Label: "3-0M", StartMonths: 3, EndMonths: 0},
}

// SparklineDays is the trailing display window for the sparkline series.
const SparklineDays = 30

// DefaultCurrency is used when the upstream payload omits a currency code.
const DefaultCurrency = "EUR"

// TSR computes the percentage change from start to end. Defined as 0 when
// start is 0 to guard the division, not as a financial claim.
func TSR(end, start float64) float64 {
	if start == 0 {
		return 0
	}
	return (end - start) / start * 100
}

// roundTo rounds v half-up to the given number of decimal places. Applied
// exactly once, at the output boundary; everything upstream keeps full
// precision.
func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// monthsAgo returns the unix timestamp of now shifted back by n months.
func monthsAgo(now time.Time, n int) int64 {
	return now.AddDate(0, -n, 0).Unix()
}

// Aggregate computes the full derived record for one symbol: rolling-quarter
// TSR over the trailing year, to-date TSR over the fixed look-backs, the
// trailing sparkline, and the rounded current price. The reference price may
// be NaN, in which case the series' latest valid close is used throughout.
func Aggregate(r *series.Resolver, referencePrice float64, now time.Time) (*models.StockReturns, error) {
	current, err := r.EffectivePrice(referencePrice)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current price: %w", err)
	}

	toDate := make([]models.TSRPeriod, 0, len(ToDateWindows))
	for _, w := range ToDateWindows {
		start, err := r.ClosestClose(monthsAgo(now, w.StartMonths))
		if err != nil {
			return nil, fmt.Errorf("no price near %s lookback: %w", w.Label, err)
		}
		toDate = append(toDate, models.TSRPeriod{
			Period: w.Label,
			TSR:    roundTo(TSR(current, start), 1),
		})
	}

	rolling := make([]models.TSRPeriod, 0, len(RollingWindows))
	for _, w := range RollingWindows {
		start, err := r.ClosestClose(monthsAgo(now, w.StartMonths))
		if err != nil {
			return nil, fmt.Errorf("no price near %s window start: %w", w.Label, err)
		}
		// The trailing quarter ends at the current price; every other
		// boundary is a closest-close lookup.
		end := current
		if w.EndMonths > 0 {
			end, err = r.ClosestClose(monthsAgo(now, w.EndMonths))
			if err != nil {
				return nil, fmt.Errorf("no price near %s window end: %w", w.Label, err)
			}
		}
		rolling = append(rolling, models.TSRPeriod{
			Period: w.Label,
			TSR:    roundTo(TSR(end, start), 1),
		})
	}

	currency := r.Series().Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	return &models.StockReturns{
		Symbol:       r.Series().Symbol,
		RollingTSR:   rolling,
		ToDateTSR:    toDate,
		Sparkline:    r.WindowedSeries(now.AddDate(0, 0, -SparklineDays).Unix()),
		CurrentPrice: roundTo(current, 2),
		Currency:     currency,
	}, nil
}
