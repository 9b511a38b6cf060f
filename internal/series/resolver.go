// Package series normalizes a sparse daily price history into queryable form
package series

import (
	"errors"
	"fmt"
	"math"

	"github.com/jdelorme/sillage/internal/models"
)

// ErrNoValidPrice signals that a series contains no usable close at all.
var ErrNoValidPrice = errors.New("no valid price in series")

// Resolver answers price lookups against one symbol's raw daily series.
// It holds the series for the duration of a single request's computation
// and performs no I/O.
type Resolver struct {
	series *models.PriceSeries
}

// NewResolver validates the series shape and wraps it for lookups.
// Timestamps and Closes must be co-indexed and the same length.
func NewResolver(s *models.PriceSeries) (*Resolver, error) {
	if s == nil {
		return nil, errors.New("series is nil")
	}
	if len(s.Timestamps) != len(s.Closes) {
		return nil, fmt.Errorf("series index mismatch: %d timestamps, %d closes", len(s.Timestamps), len(s.Closes))
	}
	return &Resolver{series: s}, nil
}

// Series returns the underlying series.
func (r *Resolver) Series() *models.PriceSeries {
	return r.series
}

// present reports whether the close at index i is a usable price.
func (r *Resolver) present(i int) bool {
	c := r.series.Closes[i]
	return c != nil && !math.IsNaN(*c) && !math.IsInf(*c, 0)
}

// LatestValidClose scans backward from the most recent point and returns
// the first present close. Returns ErrNoValidPrice when every close in the
// series is absent.
func (r *Resolver) LatestValidClose() (float64, error) {
	for i := r.series.Len() - 1; i >= 0; i-- {
		if r.present(i) {
			return *r.series.Closes[i], nil
		}
	}
	return 0, ErrNoValidPrice
}

// ClosestClose returns the present close whose timestamp has the smallest
// absolute distance to target. On an exact tie the earlier point wins.
// No interpolation: the nearest real trading day's close is used as-is.
func (r *Resolver) ClosestClose(target int64) (float64, error) {
	bestIdx := -1
	var bestDiff int64
	for i := 0; i < r.series.Len(); i++ {
		if !r.present(i) {
			continue
		}
		diff := r.series.Timestamps[i] - target
		if diff < 0 {
			diff = -diff
		}
		if bestIdx < 0 || diff < bestDiff {
			bestIdx = i
			bestDiff = diff
		}
	}
	if bestIdx < 0 {
		return 0, ErrNoValidPrice
	}
	return *r.series.Closes[bestIdx], nil
}

// WindowedSeries returns the ordered present closes with timestamp >= since.
// An empty window yields an empty slice, not an error.
func (r *Resolver) WindowedSeries(since int64) []float64 {
	out := []float64{}
	for i := 0; i < r.series.Len(); i++ {
		if r.series.Timestamps[i] >= since && r.present(i) {
			out = append(out, *r.series.Closes[i])
		}
	}
	return out
}

// EffectivePrice resolves the current price used by every derived metric:
// the externally supplied reference price when finite, otherwise the
// series' own latest valid close. Resolved once per request.
func (r *Resolver) EffectivePrice(reference float64) (float64, error) {
	if !math.IsNaN(reference) && !math.IsInf(reference, 0) {
		return reference, nil
	}
	return r.LatestValidClose()
}
