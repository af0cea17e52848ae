package x11

import "github.com/1broseidon/tiledock/internal/geometry"

// Box is a rectangle in X11 root coordinates, where Y grows downward.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Space converts between X11 root coordinates and the Y-up panel space.
// Height is the root window height.
type Space struct {
	Height int
}

// Rect converts b into panel space.
func (s Space) Rect(b Box) geometry.Rect {
	return geometry.Rect{X: b.X, Y: s.Height - (b.Y + b.Height), Width: b.Width, Height: b.Height}
}

// Box converts r into root coordinates.
func (s Space) Box(r geometry.Rect) Box {
	return Box{X: r.X, Y: s.Height - r.MaxY(), Width: r.Width, Height: r.Height}
}

// Point converts a root pointer position into panel space.
func (s Space) Point(rootX, rootY int) geometry.Point {
	return geometry.Point{X: rootX, Y: s.Height - rootY}
}

func (b Box) intersect(o Box) (Box, bool) {
	x1 := max(b.X, o.X)
	y1 := max(b.Y, o.Y)
	x2 := min(b.X+b.Width, o.X+o.Width)
	y2 := min(b.Y+b.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Box{}, false
	}
	return Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}
