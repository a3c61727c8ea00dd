package textwerk

import "testing"

// TestCoordLess tests lexicographic ordering
func TestCoordLess(t *testing.T) {
	tests := []struct {
		a, b Coord
		want bool
	}{
		{Coord{0, 0}, Coord{0, 0}, false},
		{Coord{0, 0}, Coord{0, 1}, true},
		{Coord{0, 5}, Coord{1, 0}, true},
		{Coord{1, 0}, Coord{0, 9}, false},
		{Coord{2, 3}, Coord{2, 3}, false},
		{Coord{2, 2}, Coord{2, 3}, true},
	}

	for _, tt := range tests {
		if got := tt.a.Less(tt.b); got != tt.want {
			t.Errorf("%v.Less(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

// TestCoordString tests formatting
func TestCoordString(t *testing.T) {
	if got := (Coord{Line: 3, Byte: 14}).String(); got != "3:14" {
		t.Errorf("String() = %q, want %q", got, "3:14")
	}
	if got := MakeCoordRange(0, 1, 2, 3).String(); got != "0:1-2:3" {
		t.Errorf("String() = %q, want %q", got, "0:1-2:3")
	}
}

// TestCoordRangeRectified tests endpoint ordering
func TestCoordRangeRectified(t *testing.T) {
	ordered := MakeCoordRange(1, 2, 3, 4)
	if !ordered.IsRectified() {
		t.Error("ordered range should be rectified")
	}
	if ordered.Rectified() != ordered {
		t.Error("Rectified() must not disturb an ordered range")
	}

	backward := MakeCoordRange(3, 4, 1, 2)
	if backward.IsRectified() {
		t.Error("backward range should not be rectified")
	}
	if backward.Rectified() != ordered {
		t.Errorf("Rectified() = %v, want %v", backward.Rectified(), ordered)
	}
	if backward.SwapEnds() != ordered {
		t.Errorf("SwapEnds() = %v, want %v", backward.SwapEnds(), ordered)
	}
}

// TestCoordRangeEmpty tests emptiness
func TestCoordRangeEmpty(t *testing.T) {
	if !MakeCoordRange(1, 1, 1, 1).IsEmpty() {
		t.Error("point range should be empty")
	}
	if !MakeCoordRange(2, 0, 1, 0).IsEmpty() {
		t.Error("backward range should be empty")
	}
	if MakeCoordRange(1, 0, 1, 1).IsEmpty() {
		t.Error("forward range should not be empty")
	}
}
