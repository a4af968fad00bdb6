package cost

import (
	"math"
	"testing"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name       string
		layout     layout.Layout
		wantArea   float64
		wantCount  int
		wantAmount float64
	}{
		{
			name:       "empty",
			layout:     layout.Empty(),
			wantArea:   0,
			wantCount:  0,
			wantAmount: 0,
		},
		{
			name: "office",
			layout: layout.Layout{
				Rooms:      []layout.Room{{Name: "Office", Width: 5000, Height: 4000}},
				Sprinklers: []layout.Point{{X: 1000, Y: 1000}, {X: 4000, Y: 3000}},
			},
			wantArea:   20.0,
			wantCount:  2,
			wantAmount: 440.0,
		},
		{
			name: "sprinklers only",
			layout: layout.Layout{
				Sprinklers: []layout.Point{{}, {}, {}},
			},
			wantArea:   0,
			wantCount:  3,
			wantAmount: 360,
		},
		{
			name: "rounding at boundary",
			layout: layout.Layout{
				Rooms: []layout.Room{
					{Width: 1001, Height: 1001},
					{Width: 1001, Height: 1001},
				},
			},
			wantArea:   2.0,
			wantCount:  0,
			wantAmount: 20.04,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(tt.layout)
			if got.TotalAreaM2 != tt.wantArea {
				t.Errorf("TotalAreaM2 = %v, want %v", got.TotalAreaM2, tt.wantArea)
			}
			if got.TotalSprinklers != tt.wantCount {
				t.Errorf("TotalSprinklers = %v, want %v", got.TotalSprinklers, tt.wantCount)
			}
			if got.EstimatedCost != tt.wantAmount {
				t.Errorf("EstimatedCost = %v, want %v", got.EstimatedCost, tt.wantAmount)
			}
			if got.Currency != DefaultCurrency {
				t.Errorf("Currency = %q, want %q", got.Currency, DefaultCurrency)
			}
		})
	}
}

func TestEstimateSprinklerCountMatchesLength(t *testing.T) {
	for n := 0; n < 50; n += 7 {
		l := layout.Layout{Sprinklers: make([]layout.Point, n)}
		if got := Estimate(l).TotalSprinklers; got != n {
			t.Errorf("TotalSprinklers = %d, want %d", got, n)
		}
	}
}

func TestEstimateAreaMatchesRoomAreas(t *testing.T) {
	rooms := []layout.Room{
		{Width: 3333, Height: 2777},
		{Width: 1234, Height: 5678},
		{Width: 999, Height: 1},
	}
	var want float64
	for _, r := range rooms {
		want += r.Width * r.Height / 1_000_000
	}

	got := Estimate(layout.Layout{Rooms: rooms}).TotalAreaM2
	if math.Abs(got-want) > 0.005 {
		t.Errorf("TotalAreaM2 = %v, want %v within rounding", got, want)
	}
}

func TestPricingOverride(t *testing.T) {
	p := Pricing{SprinklerUnitCost: 100, AreaUnitCost: 2.5, Currency: "EUR"}
	l := layout.Layout{
		Rooms:      []layout.Room{{Width: 2000, Height: 2000}},
		Sprinklers: []layout.Point{{}},
	}

	got := p.Estimate(l)
	if got.EstimatedCost != 110 {
		t.Errorf("EstimatedCost = %v, want 110", got.EstimatedCost)
	}
	if got.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", got.Currency)
	}
	if got.SprinklerUnitCost != 100 || got.AreaUnitCost != 2.5 {
		t.Errorf("unit prices = %v/%v, want 100/2.5", got.SprinklerUnitCost, got.AreaUnitCost)
	}
}

func TestRoomCost(t *testing.T) {
	p := Pricing{AreaUnitCost: 2.5}
	tests := []struct {
		name string
		room layout.Room
		want float64
	}{
		{"square", layout.Room{Width: 2000, Height: 2000}, 10},
		{"degenerate", layout.Room{Width: 0, Height: 3000}, 0},
		{"rounded", layout.Room{Width: 1234, Height: 567}, 1.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.RoomCost(tt.room); got != tt.want {
				t.Errorf("RoomCost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoomCostsMatchEstimate(t *testing.T) {
	l := layout.Layout{Rooms: []layout.Room{
		{Width: 6000, Height: 3000},
		{Width: 2000, Height: 2000},
	}}
	s := Pricing{AreaUnitCost: 10, Currency: "EUR"}.Estimate(l)

	p := s.Pricing()
	if p.AreaUnitCost != 10 || p.Currency != "EUR" {
		t.Errorf("Summary.Pricing() = %+v, want area cost 10 in EUR", p)
	}
	var sum float64
	for _, r := range l.Rooms {
		sum += p.RoomCost(r)
	}
	if sum != s.EstimatedCost {
		t.Errorf("sum of room costs = %v, want %v", sum, s.EstimatedCost)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1.004, 1},
		{1.006, 1.01},
		{440, 440},
	}

	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
