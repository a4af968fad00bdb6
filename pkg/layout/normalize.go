package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
)

const fence = "```"

// Repairs counts the local recoveries made while normalizing a payload.
type Repairs struct {
	DefaultedFields   int // room fields replaced by a default
	DroppedRooms      int // room entries that were not objects
	DroppedSprinklers int // sprinkler entries without numeric x and y
}

// Any reports whether anything was defaulted or dropped.
func (r Repairs) Any() bool {
	return r.DefaultedFields > 0 || r.DroppedRooms > 0 || r.DroppedSprinklers > 0
}

// Normalize parses raw model output into a canonical layout.
//
// A single surrounding code fence is stripped first. A top-level parse
// failure is an INVALID_LAYOUT error carrying the raw text; malformed rooms
// and sprinklers are defaulted or dropped instead of failing the layout.
func Normalize(raw string) (Layout, error) {
	l, _, err := NormalizeReport(raw)
	return l, err
}

// NormalizeReport is [Normalize] that also returns the repairs made.
func NormalizeReport(raw string) (Layout, Repairs, error) {
	l, rep, err := decode([]byte(StripFence(raw)))
	if err != nil {
		return Layout{}, rep, errors.Wrap(errors.ErrCodeInvalidLayout, err,
			"failed to parse layout from model output").WithDetail(raw)
	}
	return l, rep, nil
}

// Parse normalizes caller-supplied layout JSON (an upload or a form field).
// Unlike model output, malformed caller input is the caller's fault and is
// reported as BAD_REQUEST.
func Parse(data []byte) (Layout, error) {
	l, _, err := ParseReport(data)
	return l, err
}

// ParseReport is [Parse] that also returns the repairs made.
func ParseReport(data []byte) (Layout, Repairs, error) {
	l, rep, err := decode(data)
	if err != nil {
		return Layout{}, rep, errors.Wrap(errors.ErrCodeBadRequest, err, "invalid layout JSON")
	}
	return l, rep, nil
}

// StripFence removes a fenced code block wrapper. When the trimmed text
// starts with three backticks its first and last lines are dropped;
// otherwise the trimmed text is returned unchanged.
func StripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, fence) {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= 2 {
		return ""
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}

func decode(data []byte) (Layout, Repairs, error) {
	var rep Repairs

	// Numbers stay json.Number so that one out-of-range value only
	// defaults its own field.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var top any
	if err := dec.Decode(&top); err != nil {
		return Layout{}, rep, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Layout{}, rep, fmt.Errorf("unexpected data after layout object")
	}
	obj, ok := top.(map[string]any)
	if !ok {
		return Layout{}, rep, fmt.Errorf("layout must be a JSON object, got %s", kind(top))
	}

	l := Empty()
	for _, entry := range list(obj["rooms"]) {
		m, ok := entry.(map[string]any)
		if !ok {
			rep.DroppedRooms++
			continue
		}
		l.Rooms = append(l.Rooms, room(m, &rep))
	}
	for _, entry := range list(obj["sprinklers"]) {
		p, ok := point(entry)
		if !ok {
			rep.DroppedSprinklers++
			continue
		}
		l.Sprinklers = append(l.Sprinklers, p)
	}
	return l, rep, nil
}

func room(m map[string]any, rep *Repairs) Room {
	r := Room{}
	if name, ok := m["name"].(string); ok {
		r.Name = name
	}
	r.X = field(m, "x", DefaultX, false, rep)
	r.Y = field(m, "y", DefaultY, false, rep)
	r.Width = field(m, "width", DefaultWidth, true, rep)
	r.Height = field(m, "height", DefaultHeight, true, rep)
	return r
}

// field reads a numeric room field, substituting def when it is missing,
// non-numeric, or (for sizes) not strictly positive.
func field(m map[string]any, key string, def float64, positive bool, rep *Repairs) float64 {
	v, ok := number(m[key])
	if !ok || (positive && v <= 0) {
		rep.DefaultedFields++
		return def
	}
	return v
}

func point(entry any) (Point, bool) {
	m, ok := entry.(map[string]any)
	if !ok {
		return Point{}, false
	}
	x, okX := number(m["x"])
	y, okY := number(m["y"])
	if !okX || !okY {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

// number accepts JSON numbers and numeric strings. Booleans, objects,
// NaN, infinities and values outside the float64 range are rejected.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func list(v any) []any {
	items, _ := v.([]any)
	return items
}

func kind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
