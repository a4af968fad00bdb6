// Package layout defines the canonical floor layout shared by every
// artifact stage, and the normalizer that turns untrusted text into it.
//
// A [Layout] is produced once per pipeline invocation, either from
// caller-supplied JSON ([Parse]) or from model output ([Normalize]), and is
// treated as immutable afterwards. All tolerance for malformed input lives
// in this package: downstream renderers, estimators and reports assume a
// fully populated Layout and never coerce fields themselves.
//
// Units are millimeters. A room's position is its lower-left corner and the
// rectangle extends +Width along x and +Height along y.
package layout

import (
	"fmt"
	"os"
)

// Layer names used by the geometry artifact and referenced by report legends.
const (
	LayerRooms      = "ROOMS"
	LayerSprinklers = "SPRINKLERS"
)

// Defaults applied to rooms with missing or unusable fields.
const (
	DefaultX      = 0.0
	DefaultY      = 0.0
	DefaultWidth  = 1000.0
	DefaultHeight = 1000.0
)

// SquareMillimetersPerSquareMeter converts mm² to m².
const SquareMillimetersPerSquareMeter = 1_000_000.0

// Layout is the canonical set of rooms and sprinklers.
type Layout struct {
	Rooms      []Room  `json:"rooms"`
	Sprinklers []Point `json:"sprinklers"`
}

// Room is an axis-aligned rectangle in millimeters.
type Room struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a sprinkler position in millimeters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AreaM2 returns the room's floor area in square meters at full precision.
// This is the only place the mm² to m² conversion is defined; the cost
// estimator and the technical report both call it.
func (r Room) AreaM2() float64 {
	return r.Width * r.Height / SquareMillimetersPerSquareMeter
}

// TopLeft returns the top-left corner of the room.
func (r Room) TopLeft() Point {
	return Point{X: r.X, Y: r.Y + r.Height}
}

// Corners returns the four corners counter-clockwise from the lower-left.
func (r Room) Corners() [4]Point {
	return [4]Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// Empty returns a layout with no rooms and no sprinklers. Its slices are
// non-nil so it serializes as {"rooms":[],"sprinklers":[]}.
func Empty() Layout {
	return Layout{Rooms: []Room{}, Sprinklers: []Point{}}
}

// IsEmpty reports whether the layout has neither rooms nor sprinklers.
func (l Layout) IsEmpty() bool {
	return len(l.Rooms) == 0 && len(l.Sprinklers) == 0
}

// ReadFile parses a caller-supplied layout JSON file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	return Parse(data)
}
