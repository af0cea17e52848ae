package geometry

import (
	"math"
	"testing"
)

func TestEdgesCompatible_Symmetric(t *testing.T) {
	compatible := map[[2]Edge]bool{
		{EdgeTop, EdgeBottom}: true,
		{EdgeBottom, EdgeTop}: true,
		{EdgeLeft, EdgeRight}: true,
		{EdgeRight, EdgeLeft}: true,
	}

	for _, a := range Edges {
		for _, b := range Edges {
			got := EdgesCompatible(a, b)
			if got != EdgesCompatible(b, a) {
				t.Errorf("EdgesCompatible(%s, %s) != EdgesCompatible(%s, %s)", a, b, b, a)
			}
			if want := compatible[[2]Edge{a, b}]; got != want {
				t.Errorf("EdgesCompatible(%s, %s) = %v, want %v", a, b, got, want)
			}
		}
	}
}

func TestEdgesCompatible_RejectsUnknown(t *testing.T) {
	if EdgesCompatible(Edge("middle"), EdgeTop) {
		t.Fatalf("expected unknown edge to be incompatible")
	}
	if EdgesCompatible(Edge(""), Edge("")) {
		t.Fatalf("expected empty edges to be incompatible")
	}
}

func TestParseEdge(t *testing.T) {
	tests := []struct {
		input   string
		want    Edge
		wantErr bool
	}{
		{"top", EdgeTop, false},
		{" Bottom ", EdgeBottom, false},
		{"LEFT", EdgeLeft, false},
		{"right", EdgeRight, false},
		{"center", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEdge(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEdge(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEdge(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseAlignment(t *testing.T) {
	if a, err := ParseAlignment("Trailing"); err != nil || a != AlignTrailing {
		t.Fatalf("ParseAlignment(Trailing) = %q, %v", a, err)
	}
	if _, err := ParseAlignment("middle"); err == nil {
		t.Fatalf("expected error for unknown alignment")
	}
}

func TestOverlaps(t *testing.T) {
	target := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	tests := []struct {
		name    string
		edge    Edge
		dragged Rect
		want    bool
	}{
		{"vertical snap with shared x span", EdgeTop, Rect{X: 50, Y: -60, Width: 100, Height: 50}, true},
		{"vertical snap touching x span", EdgeTop, Rect{X: 100, Y: -60, Width: 100, Height: 50}, false},
		{"vertical snap disjoint x span", EdgeBottom, Rect{X: 200, Y: 110, Width: 50, Height: 50}, false},
		{"horizontal snap with shared y span", EdgeLeft, Rect{X: 110, Y: 90, Width: 50, Height: 50}, true},
		{"horizontal snap touching y span", EdgeLeft, Rect{X: 110, Y: 100, Width: 50, Height: 50}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.edge, tt.dragged, target); got != tt.want {
				t.Errorf("Overlaps(%s, %+v, %+v) = %v, want %v", tt.edge, tt.dragged, target, got, tt.want)
			}
		})
	}
}

func TestEdgeDistance(t *testing.T) {
	target := Rect{X: 0, Y: 0, Width: 200, Height: 100}

	tests := []struct {
		name       string
		dragged    Rect
		dragEdge   Edge
		targetEdge Edge
		want       float64
	}{
		// dragged sits below target: its top (maxY=-10) faces target bottom (minY=0)
		{"top to bottom", Rect{X: 20, Y: -60, Width: 100, Height: 50}, EdgeTop, EdgeBottom, 10},
		// dragged above target: its bottom (minY=112) faces target top (maxY=100)
		{"bottom to top", Rect{X: 20, Y: 112, Width: 100, Height: 50}, EdgeBottom, EdgeTop, 12},
		// dragged to the right: its left (minX=205) faces target right (maxX=200)
		{"left to right", Rect{X: 205, Y: 10, Width: 50, Height: 50}, EdgeLeft, EdgeRight, 5},
		// dragged to the left: its right (maxX=-3) faces target left (minX=0)
		{"right to left", Rect{X: -53, Y: 10, Width: 50, Height: 50}, EdgeRight, EdgeLeft, 3},
		{"overlapping frames still measure", Rect{X: 20, Y: -40, Width: 100, Height: 50}, EdgeTop, EdgeBottom, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EdgeDistance(tt.dragged, tt.dragEdge, target, tt.targetEdge)
			if got != tt.want {
				t.Errorf("EdgeDistance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdgeDistance_InfiniteWithoutOverlapOrCompatibility(t *testing.T) {
	target := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	// Within 5 units vertically but entirely to the right.
	dragged := Rect{X: 150, Y: -55, Width: 50, Height: 50}
	if d := EdgeDistance(dragged, EdgeTop, target, EdgeBottom); !math.IsInf(d, 1) {
		t.Fatalf("expected +Inf without overlap, got %v", d)
	}

	dragged = Rect{X: 10, Y: -55, Width: 50, Height: 50}
	if d := EdgeDistance(dragged, EdgeTop, target, EdgeTop); !math.IsInf(d, 1) {
		t.Fatalf("expected +Inf for incompatible edges, got %v", d)
	}
}
