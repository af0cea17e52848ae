package x11

import (
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/tiledock/internal/geometry"
)

func TestLinksRejectCycles(t *testing.T) {
	l := NewLinks()
	if err := l.Attach(1, 1, geometry.Point{}); !errors.Is(err, ErrLinkCycle) {
		t.Fatalf("expected ErrLinkCycle for self link, got %v", err)
	}
	if err := l.Attach(2, 1, geometry.Point{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Attach(3, 2, geometry.Point{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Attach(1, 3, geometry.Point{}); !errors.Is(err, ErrLinkCycle) {
		t.Fatalf("expected ErrLinkCycle for 1->3->2->1, got %v", err)
	}
}

func TestLinksPlacementsFollowChains(t *testing.T) {
	l := NewLinks()
	_ = l.Attach(20, 10, geometry.Point{X: 0, Y: -100})
	_ = l.Attach(30, 10, geometry.Point{X: 200, Y: 0})
	_ = l.Attach(40, 20, geometry.Point{X: 0, Y: -50})

	got := l.Placements(10, geometry.Point{X: 100, Y: 500})
	want := []Placement{
		{Window: 20, Origin: geometry.Point{X: 100, Y: 400}},
		{Window: 30, Origin: geometry.Point{X: 300, Y: 500}},
		{Window: 40, Origin: geometry.Point{X: 100, Y: 350}},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d placements, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("placement %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestLinksDetachRequiresMatchingTarget(t *testing.T) {
	l := NewLinks()
	_ = l.Attach(2, 1, geometry.Point{})

	if l.Detach(2, 9) {
		t.Fatalf("detach with wrong target must be a no-op")
	}
	if !l.Detach(2, 1) {
		t.Fatalf("expected detach to remove the link")
	}
	if _, ok := l.Target(2); ok {
		t.Fatalf("link still present after detach")
	}
}

func TestLinksForget(t *testing.T) {
	l := NewLinks()
	_ = l.Attach(2, 1, geometry.Point{})
	_ = l.Attach(3, 1, geometry.Point{})
	_ = l.Attach(1, 5, geometry.Point{})

	l.Forget(1)

	for _, w := range []xproto.Window{1, 2, 3} {
		if _, ok := l.Target(w); ok {
			t.Fatalf("window %d still linked after Forget(1)", w)
		}
	}
	if len(l.Followers(5)) != 0 {
		t.Fatalf("expected no followers of 5")
	}
}
