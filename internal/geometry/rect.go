package geometry

import "math"

// Point is a position in the shared panel coordinate space.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect describes a panel frame. The space is Y-up: Y is the bottom edge and
// Y+Height is the top edge.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (r Rect) MinX() int { return r.X }
func (r Rect) MaxX() int { return r.X + r.Width }
func (r Rect) MinY() int { return r.Y }
func (r Rect) MaxY() int { return r.Y + r.Height }

// MidX returns the horizontal center, rounded toward MinX.
func (r Rect) MidX() int { return r.X + r.Width/2 }

// MidY returns the vertical center, rounded toward MinY.
func (r Rect) MidY() int { return r.Y + r.Height/2 }

// Origin returns the frame origin.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the frame size.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Center returns the frame midpoint.
func (r Rect) Center() Point { return Point{X: r.MidX(), Y: r.MidY()} }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r (max edges exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX() && p.X < r.MaxX() && p.Y >= r.MinY() && p.Y < r.MaxY()
}

// At returns r moved so that its origin is p.
func (r Rect) At(p Point) Rect {
	r.X = p.X
	r.Y = p.Y
	return r
}

// RectFrom builds a rect from an origin and a size.
func RectFrom(origin Point, size Size) Rect {
	return Rect{X: origin.X, Y: origin.Y, Width: size.Width, Height: size.Height}
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Clamp moves frame so it lies fully inside area. A frame larger than the
// area on an axis is pinned to the area's minimum on that axis. An empty area
// leaves the frame untouched.
func Clamp(frame Rect, area Rect) Rect {
	if area.Empty() {
		return frame
	}
	frame.X = clampAxis(frame.X, frame.Width, area.MinX(), area.MaxX())
	frame.Y = clampAxis(frame.Y, frame.Height, area.MinY(), area.MaxY())
	return frame
}

func clampAxis(pos, length, lo, hi int) int {
	if pos+length > hi {
		pos = hi - length
	}
	if pos < lo {
		pos = lo
	}
	return pos
}
