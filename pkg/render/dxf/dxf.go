package dxf

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
)

// Drawing constants, in millimeters.
const (
	SprinklerRadius   = 50.0
	LabelOffset       = 50.0
	DefaultTextHeight = 2.5
)

// Version is the DXF version written to the header (AutoCAD R12).
const Version = "AC1009"

// Table entry names referenced by entities.
const (
	LineType  = "CONTINUOUS"
	TextStyle = "STANDARD"
)

// ACI layer colors.
const (
	colorWhite = 7
	colorRed   = 1
)

// Stats counts what a render produced.
type Stats struct {
	Rooms         int
	Labels        int
	SkippedLabels int
	Sprinklers    int
}

// Option configures rendering.
type Option func(*renderer)

// WithTextHeight sets the room label height in millimeters.
func WithTextHeight(h float64) Option {
	return func(r *renderer) {
		if h > 0 {
			r.textHeight = h
		}
	}
}

type renderer struct {
	textHeight float64
	buf        bytes.Buffer
	stats      Stats
}

// Render returns the DXF document for l.
func Render(l layout.Layout, opts ...Option) ([]byte, Stats) {
	r := &renderer{textHeight: DefaultTextHeight}
	for _, opt := range opts {
		opt(r)
	}

	r.header(l)
	r.tables()
	r.section("BLOCKS")
	r.group(0, "ENDSEC")
	r.section("ENTITIES")
	for _, room := range l.Rooms {
		r.room(room)
	}
	for _, p := range l.Sprinklers {
		r.sprinkler(p)
	}
	r.group(0, "ENDSEC")
	r.group(0, "EOF")

	return r.buf.Bytes(), r.stats
}

func (r *renderer) header(l layout.Layout) {
	lo, hi := extents(l)
	r.section("HEADER")
	r.group(9, "$ACADVER")
	r.group(1, Version)
	r.group(9, "$INSBASE")
	r.point(10, 0, 0, true)
	r.group(9, "$EXTMIN")
	r.point(10, lo.X, lo.Y, true)
	r.group(9, "$EXTMAX")
	r.point(10, hi.X, hi.Y, true)
	r.group(9, "$TEXTSTYLE")
	r.group(7, TextStyle)
	r.group(9, "$CLAYER")
	r.group(8, "0")
	r.group(0, "ENDSEC")
}

// extents returns the bounding box of every room outline and sprinkler
// circle. An empty layout has a zero box.
func extents(l layout.Layout) (lo, hi layout.Point) {
	first := true
	grow := func(x, y float64) {
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return
		}
		if first {
			lo, hi = layout.Point{X: x, Y: y}, layout.Point{X: x, Y: y}
			first = false
			return
		}
		lo.X, lo.Y = min(lo.X, x), min(lo.Y, y)
		hi.X, hi.Y = max(hi.X, x), max(hi.Y, y)
	}
	for _, room := range l.Rooms {
		for _, c := range room.Corners() {
			grow(c.X, c.Y)
		}
	}
	for _, p := range l.Sprinklers {
		grow(p.X-SprinklerRadius, p.Y-SprinklerRadius)
		grow(p.X+SprinklerRadius, p.Y+SprinklerRadius)
	}
	return lo, hi
}

func (r *renderer) tables() {
	layers := []struct {
		name  string
		color int
	}{
		{"0", colorWhite},
		{layout.LayerRooms, colorWhite},
		{layout.LayerSprinklers, colorRed},
	}

	r.section("TABLES")

	r.table("LTYPE", 1)
	r.group(0, "LTYPE")
	r.group(2, LineType)
	r.group(70, "0")
	r.group(3, "Solid line")
	r.group(72, "65")
	r.group(73, "0")
	r.group(40, "0")
	r.group(0, "ENDTAB")

	r.table("LAYER", len(layers))
	for _, ly := range layers {
		r.group(0, "LAYER")
		r.group(2, ly.name)
		r.group(70, "0")
		r.group(62, strconv.Itoa(ly.color))
		r.group(6, LineType)
	}
	r.group(0, "ENDTAB")

	r.table("STYLE", 1)
	r.group(0, "STYLE")
	r.group(2, TextStyle)
	r.group(70, "0")
	r.group(40, "0") // variable height
	r.group(41, "1")
	r.group(50, "0")
	r.group(71, "0")
	r.group(42, num(r.textHeight))
	r.group(3, "txt")
	r.group(4, "")
	r.group(0, "ENDTAB")

	r.group(0, "ENDSEC")
}

func (r *renderer) table(name string, entries int) {
	r.group(0, "TABLE")
	r.group(2, name)
	r.group(70, strconv.Itoa(entries))
}

func (r *renderer) room(room layout.Room) {
	r.entity("POLYLINE", layout.LayerRooms)
	r.group(66, "1") // vertices follow
	r.point(10, 0, 0, true)
	r.group(70, "1") // closed
	for _, c := range room.Corners() {
		r.entity("VERTEX", layout.LayerRooms)
		r.point(10, c.X, c.Y, true)
	}
	r.entity("SEQEND", layout.LayerRooms)
	r.stats.Rooms++

	text, x, y, err := label(room)
	if err != nil {
		r.stats.SkippedLabels++
		return
	}
	r.entity("TEXT", layout.LayerRooms)
	r.point(10, x, y, true)
	r.group(40, num(r.textHeight))
	r.group(1, text)
	r.group(7, TextStyle)
	r.stats.Labels++
}

func (r *renderer) sprinkler(p layout.Point) {
	r.entity("CIRCLE", layout.LayerSprinklers)
	r.point(10, p.X, p.Y, true)
	r.group(40, num(SprinklerRadius))
	r.stats.Sprinklers++
}

// label returns the text and anchor of a room's name label.
func label(room layout.Room) (string, float64, float64, error) {
	text := sanitize(room.Name)
	if text == "" {
		return "", 0, 0, fmt.Errorf("room has no printable name")
	}
	if room.Width <= LabelOffset || room.Height <= LabelOffset {
		return "", 0, 0, fmt.Errorf("room %q too small for label", text)
	}
	tl := room.TopLeft()
	x, y := tl.X+LabelOffset, tl.Y-LabelOffset
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return "", 0, 0, fmt.Errorf("room %q has no finite label position", text)
	}
	return text, x, y, nil
}

// sanitize turns control characters (including newlines, which would
// break the group code structure) into spaces and trims the result.
func sanitize(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s))
}

func (r *renderer) section(name string) {
	r.group(0, "SECTION")
	r.group(2, name)
}

func (r *renderer) entity(kind, layer string) {
	r.group(0, kind)
	r.group(8, layer)
}

func (r *renderer) point(code int, x, y float64, withZ bool) {
	r.group(code, num(x))
	r.group(code+10, num(y))
	if withZ {
		r.group(code+20, "0")
	}
}

func (r *renderer) group(code int, value string) {
	fmt.Fprintf(&r.buf, "%3d\n%s\n", code, value)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
