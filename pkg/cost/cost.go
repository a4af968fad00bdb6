// Package cost computes the deterministic cost summary of a layout.
//
// The estimate is a pure function of the layout: the area term depends only
// on rooms and the sprinkler term only on sprinklers. Internal sums keep
// full precision; values are rounded to two decimals only when a [Summary]
// is produced, so every consumer sees the same figures.
package cost

import (
	"math"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
)

// Default unit prices, in currency units.
const (
	SprinklerUnitCost = 120.0 // per sprinkler head
	AreaUnitCost      = 10.0  // per square meter of floor area
)

// DefaultCurrency labels amounts when no currency is configured.
const DefaultCurrency = "USD"

// Pricing holds the unit prices an estimate is computed with.
type Pricing struct {
	SprinklerUnitCost float64 `toml:"sprinkler_unit_cost"`
	AreaUnitCost      float64 `toml:"area_unit_cost"`
	Currency          string  `toml:"currency"`
}

// DefaultPricing returns the standard price list.
func DefaultPricing() Pricing {
	return Pricing{
		SprinklerUnitCost: SprinklerUnitCost,
		AreaUnitCost:      AreaUnitCost,
		Currency:          DefaultCurrency,
	}
}

// Summary is the rounded cost summary of a layout.
type Summary struct {
	TotalAreaM2     float64 `json:"total_area_m2"`
	TotalSprinklers int     `json:"total_sprinklers"`
	EstimatedCost   float64 `json:"estimated_cost"`
	Currency        string  `json:"currency"`

	// Unit prices the estimate was computed with, for report legends.
	SprinklerUnitCost float64 `json:"sprinkler_unit_cost"`
	AreaUnitCost      float64 `json:"area_unit_cost"`
}

// Estimate computes the summary of l with [DefaultPricing].
func Estimate(l layout.Layout) Summary {
	return DefaultPricing().Estimate(l)
}

// Estimate computes the summary of l with p's unit prices.
func (p Pricing) Estimate(l layout.Layout) Summary {
	area := TotalAreaM2(l)
	n := len(l.Sprinklers)
	total := float64(n)*p.SprinklerUnitCost + area*p.AreaUnitCost

	currency := p.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return Summary{
		TotalAreaM2:       Round(area),
		TotalSprinklers:   n,
		EstimatedCost:     Round(total),
		Currency:          currency,
		SprinklerUnitCost: p.SprinklerUnitCost,
		AreaUnitCost:      p.AreaUnitCost,
	}
}

// RoomCost is the rounded area cost of a single room under p.
func (p Pricing) RoomCost(r layout.Room) float64 {
	return Round(r.AreaM2() * p.AreaUnitCost)
}

// Pricing returns the unit prices s was computed with.
func (s Summary) Pricing() Pricing {
	return Pricing{
		SprinklerUnitCost: s.SprinklerUnitCost,
		AreaUnitCost:      s.AreaUnitCost,
		Currency:          s.Currency,
	}
}

// TotalAreaM2 sums the room areas of l at full precision.
func TotalAreaM2(l layout.Layout) float64 {
	var sum float64
	for _, r := range l.Rooms {
		sum += r.AreaM2()
	}
	return sum
}

// Round rounds v to two decimal places, half away from zero.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
