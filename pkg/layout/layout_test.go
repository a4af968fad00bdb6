package layout

import (
	"encoding/json"
	"testing"
)

func TestRoomAreaM2(t *testing.T) {
	tests := []struct {
		room Room
		want float64
	}{
		{Room{Width: 5000, Height: 4000}, 20},
		{Room{Width: 1000, Height: 1000}, 1},
		{Room{Width: 1500, Height: 333}, 0.4995},
	}

	for _, tt := range tests {
		if got := tt.room.AreaM2(); got != tt.want {
			t.Errorf("AreaM2(%vx%v) = %v, want %v", tt.room.Width, tt.room.Height, got, tt.want)
		}
	}
}

func TestRoomCorners(t *testing.T) {
	r := Room{X: 10, Y: 20, Width: 100, Height: 50}
	c := r.Corners()
	want := [4]Point{{10, 20}, {110, 20}, {110, 70}, {10, 70}}
	if c != want {
		t.Errorf("Corners() = %v, want %v", c, want)
	}
	if tl := r.TopLeft(); tl != (Point{10, 70}) {
		t.Errorf("TopLeft() = %v, want {10 70}", tl)
	}
}

func TestEmptyMarshalsAsLists(t *testing.T) {
	data, err := json.Marshal(Empty())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"rooms":[],"sprinklers":[]}`; got != want {
		t.Errorf("Marshal(Empty()) = %s, want %s", got, want)
	}
	if !Empty().IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
}
