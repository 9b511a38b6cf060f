package returns

import (
	"math"

	"github.com/jdelorme/sillage/internal/models"
)

// fundamentals merging. Each metric is resolved by walking an ordered list
// of (source, field) candidates and taking the first meaningful value.
// Meaningful means present and finite; dividends additionally treat an
// exact zero as absent, since the source feeds report missing dividend
// data as zero.

type sourceTag int

const (
	fromPrimary sourceTag = iota
	fromSecondary
)

// candidate is one (source, field) entry in a metric's resolution chain.
type candidate struct {
	source     sourceTag
	value      *float64
	rejectZero bool
}

// usable reports whether the candidate carries a meaningful value.
func (c candidate) usable() bool {
	if c.value == nil || math.IsNaN(*c.value) || math.IsInf(*c.value, 0) {
		return false
	}
	if c.rejectZero && *c.value == 0 {
		return false
	}
	return true
}

// firstUsable walks the chain in order and returns the first usable value.
func firstUsable(chain []candidate) models.Metric {
	for _, c := range chain {
		if c.usable() {
			return models.SomeMetric(*c.value)
		}
	}
	return models.Metric{}
}

// anyUsableSecondary reports whether any secondary-sourced candidate in any
// chain is usable, chosen or not.
func anyUsableSecondary(chains ...[]candidate) bool {
	for _, chain := range chains {
		for _, c := range chain {
			if c.source == fromSecondary && c.usable() {
				return true
			}
		}
	}
	return false
}

// MergeFundamentals reconciles the two provider payloads into a single
// best-available record. Either input may be nil. The record's source tag
// is coarse: "secondary" as soon as the secondary provider yielded any
// usable value for any metric, even one the primary chain won; otherwise
// "primary".
func MergeFundamentals(primary *models.PrimaryFundamentals, secondary *models.SecondaryFundamentals) models.Fundamentals {
	if primary == nil {
		primary = &models.PrimaryFundamentals{}
	}
	if secondary == nil {
		secondary = &models.SecondaryFundamentals{}
	}

	valuationChain := []candidate{
		{source: fromPrimary, value: primary.TrailingPE},
		{source: fromPrimary, value: primary.ForwardPE},
		{source: fromSecondary, value: secondary.PE},
	}
	betaChain := []candidate{
		{source: fromPrimary, value: primary.Beta},
		{source: fromSecondary, value: secondary.Beta},
	}
	dividendChain := []candidate{
		{source: fromPrimary, value: primary.DividendRate, rejectZero: true},
		{source: fromPrimary, value: primary.TrailingAnnualDividendRate, rejectZero: true},
		{source: fromPrimary, value: primary.LastDividendValue, rejectZero: true},
		{source: fromSecondary, value: secondary.LastDividend, rejectZero: true},
	}

	source := models.SourcePrimary
	if anyUsableSecondary(valuationChain, betaChain, dividendChain) {
		source = models.SourceSecondary
	}

	return models.Fundamentals{
		ValuationRatio: firstUsable(valuationChain),
		Beta:           firstUsable(betaChain),
		Dividend:       firstUsable(dividendChain),
		Source:         source,
	}
}
