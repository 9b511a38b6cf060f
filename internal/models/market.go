// Package models defines data structures for sillage
package models

import (
	"encoding/json"
	"math"
)

// PriceSeries holds a raw daily price history for one symbol.
// Timestamps and Closes are co-indexed and always the same length;
// a nil close marks a non-trading day or a provider gap. Timestamps
// are seconds since epoch, ascending.
type PriceSeries struct {
	Symbol     string     `json:"symbol"`
	Currency   string     `json:"currency,omitempty"`
	Timestamps []int64    `json:"timestamps"`
	Closes     []*float64 `json:"closes"`
}

// Len returns the number of points in the series.
func (s *PriceSeries) Len() int {
	return len(s.Timestamps)
}

// TSRPeriod is a single labelled TSR percentage.
type TSRPeriod struct {
	Period string  `json:"period"`
	TSR    float64 `json:"tsr"`
}

// StockReturns is the full derived record for one symbol: the trailing-year
// rolling-quarter breakdown, the fixed look-back performance figures, the
// short-horizon sparkline, and the merged fundamentals block.
type StockReturns struct {
	Symbol       string       `json:"symbol"`
	RollingTSR   []TSRPeriod  `json:"rolling_tsr"`
	ToDateTSR    []TSRPeriod  `json:"to_date_tsr"`
	Sparkline    []float64    `json:"sparkline"`
	CurrentPrice float64      `json:"current_price"`
	Currency     string       `json:"currency"`
	Fundamentals Fundamentals `json:"fundamentals"`
}

// Metric is a fundamentals value that may be unavailable. It marshals as a
// plain number when present and as the string "unavailable" otherwise.
type Metric struct {
	Value float64
	Valid bool
}

// SomeMetric returns a present Metric.
func SomeMetric(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// MarshalJSON implements json.Marshaler.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid || math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return json.Marshal("unavailable")
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON implements json.Unmarshaler. Anything that is not a finite
// number decodes as unavailable.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if math.IsNaN(num) || math.IsInf(num, 0) {
			*m = Metric{}
			return nil
		}
		*m = Metric{Value: num, Valid: true}
		return nil
	}
	*m = Metric{}
	return nil
}

// Fundamentals source tags.
const (
	SourcePrimary   = "primary"
	SourceSecondary = "secondary"
)

// Fundamentals is the merged best-available fundamentals block. Source is a
// single coarse tag for the whole record, not per metric.
type Fundamentals struct {
	ValuationRatio Metric `json:"valuation_ratio"`
	Beta           Metric `json:"beta"`
	Dividend       Metric `json:"dividend"`
	Source         string `json:"source"`
}

// PrimaryFundamentals is the raw payload from the primary provider.
// Pointers distinguish absent fields from reported zeros.
type PrimaryFundamentals struct {
	TrailingPE                 *float64 `json:"trailing_pe,omitempty"`
	ForwardPE                  *float64 `json:"forward_pe,omitempty"`
	Beta                       *float64 `json:"beta,omitempty"`
	DividendRate               *float64 `json:"dividend_rate,omitempty"`
	TrailingAnnualDividendRate *float64 `json:"trailing_annual_dividend_rate,omitempty"`
	LastDividendValue          *float64 `json:"last_dividend_value,omitempty"`
}

// SecondaryFundamentals is the raw payload from the secondary provider.
type SecondaryFundamentals struct {
	PE           *float64 `json:"pe,omitempty"`
	Beta         *float64 `json:"beta,omitempty"`
	LastDividend *float64 `json:"last_dividend,omitempty"`
}

// SymbolMatch is a single symbol-search result.
type SymbolMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	ExchDisp string `json:"exch_disp,omitempty"`
}
