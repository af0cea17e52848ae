package platform

import (
	"errors"
	"testing"

	"github.com/1broseidon/tiledock/internal/geometry"
)

func TestMemoryBackend_LinkedFollowerKeepsOffset(t *testing.T) {
	b := NewMemoryBackend()
	b.AddPanel("target", geometry.Rect{X: 0, Y: 0, Width: 200, Height: 100})
	b.AddPanel("follower", geometry.Rect{X: 50, Y: -54, Width: 100, Height: 50})

	if err := b.AttachLinked("follower", "target"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.SetFrame("target", geometry.Rect{X: 10, Y: 20, Width: 200, Height: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := b.Frame("follower")
	want := geometry.Rect{X: 60, Y: -34, Width: 100, Height: 50}
	if got != want {
		t.Fatalf("expected follower at %+v, got %+v", want, got)
	}

	if err := b.DetachLinked("follower", "target"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = b.SetFrame("target", geometry.Rect{X: 500, Y: 500, Width: 200, Height: 100})
	if got2, _ := b.Frame("follower"); got2 != want {
		t.Fatalf("expected detached follower to stay at %+v, got %+v", want, got2)
	}
}

func TestMemoryBackend_LinkCycleTerminates(t *testing.T) {
	b := NewMemoryBackend()
	b.AddPanel("a", geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	b.AddPanel("b", geometry.Rect{X: 20, Y: 0, Width: 10, Height: 10})
	_ = b.AttachLinked("a", "b")
	_ = b.AttachLinked("b", "a")

	if err := b.SetFrame("a", geometry.Rect{X: 5, Y: 0, Width: 10, Height: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := b.Frame("b"); got.X != 25 {
		t.Fatalf("expected b.X=25, got %d", got.X)
	}
	if got, _ := b.Frame("a"); got.X != 5 {
		t.Fatalf("expected a.X=5, got %d", got.X)
	}
}

func TestMemoryBackend_UnknownPanel(t *testing.T) {
	b := NewMemoryBackend()
	if _, err := b.Frame("nope"); !errors.Is(err, ErrPanelNotFound) {
		t.Fatalf("expected ErrPanelNotFound, got %v", err)
	}
	if err := b.SetVisible("nope", false); !errors.Is(err, ErrPanelNotFound) {
		t.Fatalf("expected ErrPanelNotFound, got %v", err)
	}
}

func TestMemoryBackend_WorkAreaUsesDisplayContainingCenter(t *testing.T) {
	left := Display{ID: 0, Bounds: geometry.Rect{X: 0, Y: 0, Width: 1000, Height: 800}, Usable: geometry.Rect{X: 0, Y: 40, Width: 1000, Height: 760}}
	right := Display{ID: 1, Bounds: geometry.Rect{X: 1000, Y: 0, Width: 1000, Height: 800}, Usable: geometry.Rect{X: 1000, Y: 0, Width: 1000, Height: 800}}
	b := NewMemoryBackend(left, right)

	area, ok := b.WorkArea(geometry.Rect{X: 1400, Y: 100, Width: 100, Height: 100})
	if !ok || area != right.Usable {
		t.Fatalf("expected right usable area, got %+v ok=%v", area, ok)
	}

	if _, ok := NewMemoryBackend().WorkArea(geometry.Rect{}); ok {
		t.Fatalf("expected no work area without displays")
	}
}
