package x11

import (
	"testing"

	"github.com/1broseidon/tiledock/internal/geometry"
)

func TestSpaceFlipsY(t *testing.T) {
	s := Space{Height: 1080}

	got := s.Rect(Box{X: 10, Y: 0, Width: 300, Height: 200})
	want := geometry.Rect{X: 10, Y: 880, Width: 300, Height: 200}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	back := s.Box(got)
	if back != (Box{X: 10, Y: 0, Width: 300, Height: 200}) {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestSpacePoint(t *testing.T) {
	s := Space{Height: 1000}
	if p := s.Point(5, 0); p != (geometry.Point{X: 5, Y: 1000}) {
		t.Fatalf("expected top of screen to map to Y=1000, got %+v", p)
	}
	if p := s.Point(5, 1000); p != (geometry.Point{X: 5, Y: 0}) {
		t.Fatalf("expected bottom of screen to map to Y=0, got %+v", p)
	}
}

func TestBoxIntersect(t *testing.T) {
	a := Box{X: 0, Y: 0, Width: 100, Height: 100}

	got, ok := a.intersect(Box{X: 50, Y: 20, Width: 100, Height: 30})
	if !ok || got != (Box{X: 50, Y: 20, Width: 50, Height: 30}) {
		t.Fatalf("unexpected intersection %+v ok=%v", got, ok)
	}
	if _, ok := a.intersect(Box{X: 100, Y: 0, Width: 10, Height: 10}); ok {
		t.Fatalf("touching boxes must not intersect")
	}
}
