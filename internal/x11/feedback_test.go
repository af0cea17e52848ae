package x11

import (
	"testing"

	"github.com/1broseidon/tiledock/internal/geometry"
)

func TestEdgeBar(t *testing.T) {
	target := geometry.Rect{X: 100, Y: 200, Width: 300, Height: 100}

	tests := []struct {
		edge geometry.Edge
		want geometry.Rect
	}{
		{geometry.EdgeTop, geometry.Rect{X: 100, Y: 298, Width: 300, Height: 4}},
		{geometry.EdgeBottom, geometry.Rect{X: 100, Y: 198, Width: 300, Height: 4}},
		{geometry.EdgeLeft, geometry.Rect{X: 98, Y: 200, Width: 4, Height: 100}},
		{geometry.EdgeRight, geometry.Rect{X: 398, Y: 200, Width: 4, Height: 100}},
	}
	for _, tt := range tests {
		t.Run(string(tt.edge), func(t *testing.T) {
			if got := EdgeBar(target, tt.edge, FeedbackThickness); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
