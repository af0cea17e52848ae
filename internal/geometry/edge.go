package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Edge names one side of a panel.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
)

// Edges lists every edge in the fixed order used for deterministic scans.
var Edges = []Edge{EdgeTop, EdgeBottom, EdgeLeft, EdgeRight}

// Valid reports whether e is one of the four known edges.
func (e Edge) Valid() bool {
	switch e {
	case EdgeTop, EdgeBottom, EdgeLeft, EdgeRight:
		return true
	default:
		return false
	}
}

// Vertical reports whether snapping on e moves a panel along the Y axis.
func (e Edge) Vertical() bool {
	return e == EdgeTop || e == EdgeBottom
}

// Opposite returns the edge compatible with e.
func (e Edge) Opposite() Edge {
	switch e {
	case EdgeTop:
		return EdgeBottom
	case EdgeBottom:
		return EdgeTop
	case EdgeLeft:
		return EdgeRight
	case EdgeRight:
		return EdgeLeft
	default:
		return ""
	}
}

// ParseEdge converts a user-supplied string into an Edge.
func ParseEdge(s string) (Edge, error) {
	e := Edge(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("unknown edge %q", s)
	}
	return e, nil
}

// Alignment resolves a follower along the axis perpendicular to the snap edge.
type Alignment string

const (
	AlignLeading  Alignment = "leading"
	AlignCenter   Alignment = "center"
	AlignTrailing Alignment = "trailing"
)

// Valid reports whether a is a known alignment.
func (a Alignment) Valid() bool {
	switch a {
	case AlignLeading, AlignCenter, AlignTrailing:
		return true
	default:
		return false
	}
}

// ParseAlignment converts a user-supplied string into an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	a := Alignment(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown alignment %q", s)
	}
	return a, nil
}

// EdgesCompatible reports whether a dragged edge can meet a target edge.
// Only opposite pairs are compatible.
func EdgesCompatible(a, b Edge) bool {
	return a.Valid() && b.Valid() && a.Opposite() == b
}

// Overlaps reports whether the two frames share a positive span on the axis
// perpendicular to draggedEdge.
func Overlaps(draggedEdge Edge, dragged, target Rect) bool {
	var overlap int
	if draggedEdge.Vertical() {
		overlap = min(dragged.MaxX(), target.MaxX()) - max(dragged.MinX(), target.MinX())
	} else {
		overlap = min(dragged.MaxY(), target.MaxY()) - max(dragged.MinY(), target.MinY())
	}
	return overlap > 0
}

// EdgeDistance returns the gap between draggedEdge of dragged and targetEdge
// of target. Incompatible edges or frames without perpendicular overlap are
// infinitely far apart.
func EdgeDistance(dragged Rect, draggedEdge Edge, target Rect, targetEdge Edge) float64 {
	if !EdgesCompatible(draggedEdge, targetEdge) {
		return math.Inf(1)
	}
	if !Overlaps(draggedEdge, dragged, target) {
		return math.Inf(1)
	}

	var d int
	switch draggedEdge {
	case EdgeTop:
		d = dragged.MaxY() - target.MinY()
	case EdgeBottom:
		d = dragged.MinY() - target.MaxY()
	case EdgeRight:
		d = dragged.MaxX() - target.MinX()
	case EdgeLeft:
		d = dragged.MinX() - target.MaxX()
	}
	return math.Abs(float64(d))
}
