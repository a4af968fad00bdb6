package dxf

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
)

type pair struct {
	code  string
	value string
}

func parse(t *testing.T, data []byte) []pair {
	t.Helper()
	var pairs []pair
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		code := strings.TrimSpace(sc.Text())
		if !sc.Scan() {
			t.Fatalf("dangling group code %q", code)
		}
		pairs = append(pairs, pair{code, sc.Text()})
	}
	return pairs
}

type entity struct {
	kind   string
	groups map[string][]string
}

func entities(t *testing.T, data []byte) []entity {
	t.Helper()
	var out []entity
	in := false
	for _, p := range parse(t, data) {
		if p.code == "2" && p.value == "ENTITIES" {
			in = true
			continue
		}
		if !in {
			continue
		}
		if p.code == "0" {
			if p.value == "ENDSEC" {
				break
			}
			out = append(out, entity{kind: p.value, groups: map[string][]string{}})
			continue
		}
		e := &out[len(out)-1]
		e.groups[p.code] = append(e.groups[p.code], p.value)
	}
	return out
}

func sample() layout.Layout {
	return layout.Layout{
		Rooms: []layout.Room{
			{Name: "Office", X: 0, Y: 0, Width: 4000, Height: 3000},
			{Name: "Storage", X: 4000, Y: 0, Width: 2000, Height: 3000},
		},
		Sprinklers: []layout.Point{{X: 1000, Y: 1000}, {X: 3000, Y: 1000}, {X: 5000, Y: 1500}},
	}
}

func TestRenderEntityCounts(t *testing.T) {
	data, stats := Render(sample())

	var polylines, vertices, seqends, circles, texts int
	open := false
	for _, e := range entities(t, data) {
		layer := e.groups["8"][0]
		switch e.kind {
		case "POLYLINE":
			if layer != layout.LayerRooms {
				t.Errorf("polyline layer = %q, want %q", layer, layout.LayerRooms)
			}
			if e.groups["70"][0] != "1" {
				t.Errorf("polyline flags = %q, want closed", e.groups["70"][0])
			}
			if e.groups["66"][0] != "1" {
				t.Error("polyline does not announce vertices")
			}
			if open {
				t.Error("polyline started before the previous SEQEND")
			}
			open = true
			polylines++
		case "VERTEX":
			if !open {
				t.Error("VERTEX outside a polyline")
			}
			vertices++
		case "SEQEND":
			open = false
			seqends++
		case "CIRCLE":
			if layer != layout.LayerSprinklers {
				t.Errorf("circle layer = %q, want %q", layer, layout.LayerSprinklers)
			}
			if r := e.groups["40"][0]; r != "50" {
				t.Errorf("circle radius = %s, want 50", r)
			}
			circles++
		case "TEXT":
			if style := e.groups["7"][0]; style != TextStyle {
				t.Errorf("text style = %q, want %q", style, TextStyle)
			}
			texts++
		}
		if _, ok := e.groups["100"]; ok {
			t.Errorf("%s carries subclass markers", e.kind)
		}
	}

	if polylines != 2 || seqends != 2 {
		t.Errorf("polylines = %d seqends = %d, want 2 and 2", polylines, seqends)
	}
	if vertices != 8 {
		t.Errorf("vertices = %d, want 8", vertices)
	}
	if circles != 3 {
		t.Errorf("circles = %d, want 3", circles)
	}
	if texts != 2 {
		t.Errorf("texts = %d, want 2", texts)
	}
	want := Stats{Rooms: 2, Labels: 2, Sprinklers: 3}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestRenderDocumentStructure(t *testing.T) {
	data, _ := Render(sample())
	pairs := parse(t, data)

	var sections []string
	tables := map[string]bool{}
	entries := map[string]bool{}
	version := ""
	for i, p := range pairs {
		if i+1 >= len(pairs) {
			break
		}
		next := pairs[i+1]
		switch {
		case p.code == "0" && p.value == "SECTION":
			sections = append(sections, next.value)
		case p.code == "0" && p.value == "TABLE":
			tables[next.value] = true
		case p.code == "0" && (p.value == "LTYPE" || p.value == "STYLE"):
			entries[p.value+":"+next.value] = true
		case p.code == "9" && p.value == "$ACADVER":
			version = next.value
		}
	}

	if version != "AC1009" {
		t.Errorf("$ACADVER = %q, want AC1009", version)
	}
	wantSections := []string{"HEADER", "TABLES", "BLOCKS", "ENTITIES"}
	if strings.Join(sections, ",") != strings.Join(wantSections, ",") {
		t.Errorf("sections = %v, want %v", sections, wantSections)
	}
	for _, name := range []string{"LTYPE", "LAYER", "STYLE"} {
		if !tables[name] {
			t.Errorf("table %s missing", name)
		}
	}
	// Every layer references CONTINUOUS and every TEXT references STANDARD.
	if !entries["LTYPE:"+LineType] {
		t.Errorf("line type %s not defined", LineType)
	}
	if !entries["STYLE:"+TextStyle] {
		t.Errorf("text style %s not defined", TextStyle)
	}
}

func TestRenderExtents(t *testing.T) {
	data, _ := Render(sample())
	pairs := parse(t, data)

	got := map[string][2]string{}
	for i, p := range pairs {
		if p.code == "9" && (p.value == "$EXTMIN" || p.value == "$EXTMAX") {
			got[p.value] = [2]string{pairs[i+1].value, pairs[i+2].value}
		}
	}
	if got["$EXTMIN"] != [2]string{"0", "0"} {
		t.Errorf("$EXTMIN = %v, want (0, 0)", got["$EXTMIN"])
	}
	if got["$EXTMAX"] != [2]string{"6000", "3000"} {
		t.Errorf("$EXTMAX = %v, want (6000, 3000)", got["$EXTMAX"])
	}
}

func TestRenderLabelPosition(t *testing.T) {
	l := layout.Layout{Rooms: []layout.Room{{Name: "Lab", X: 100, Y: 200, Width: 1000, Height: 500}}}
	data, _ := Render(l, WithTextHeight(10))

	for _, e := range entities(t, data) {
		if e.kind != "TEXT" {
			continue
		}
		if got := e.groups["1"][0]; got != "Lab" {
			t.Errorf("text = %q, want Lab", got)
		}
		if x, y := e.groups["10"][0], e.groups["20"][0]; x != "150" || y != "650" {
			t.Errorf("anchor = (%s, %s), want (150, 650)", x, y)
		}
		if h := e.groups["40"][0]; h != "10" {
			t.Errorf("height = %s, want 10", h)
		}
		return
	}
	t.Fatal("no TEXT entity")
}

func TestRenderSkipsUnplaceableLabels(t *testing.T) {
	l := layout.Layout{Rooms: []layout.Room{
		{Name: "", Width: 1000, Height: 1000},
		{Name: "Closet", Width: 40, Height: 1000},
		{Name: "Hall\nway", Width: 1000, Height: 1000},
	}}
	data, stats := Render(l)

	if stats.Rooms != 3 {
		t.Errorf("rooms = %d, want 3", stats.Rooms)
	}
	if stats.Labels != 1 || stats.SkippedLabels != 2 {
		t.Errorf("labels = %d skipped = %d, want 1 and 2", stats.Labels, stats.SkippedLabels)
	}
	for _, e := range entities(t, data) {
		if e.kind == "TEXT" && e.groups["1"][0] != "Hall way" {
			t.Errorf("text = %q, want %q", e.groups["1"][0], "Hall way")
		}
	}
}

func TestRenderEmptyLayout(t *testing.T) {
	data, stats := Render(layout.Empty())

	if len(entities(t, data)) != 0 {
		t.Error("empty layout produced entities")
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if !bytes.HasSuffix(data, []byte("  0\nEOF\n")) {
		t.Error("document does not end with EOF")
	}
}

func TestRenderDeclaresLayers(t *testing.T) {
	data, _ := Render(sample())

	layers := map[string]bool{}
	pairs := parse(t, data)
	for i, p := range pairs {
		if p.code == "0" && p.value == "LAYER" && i+1 < len(pairs) && pairs[i+1].code == "2" {
			layers[pairs[i+1].value] = true
		}
	}
	for _, name := range []string{layout.LayerRooms, layout.LayerSprinklers} {
		if !layers[name] {
			t.Errorf("layer %s not declared", name)
		}
	}
}
