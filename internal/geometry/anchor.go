package geometry

// Anchor describes how a follower attaches to a target.
type Anchor struct {
	FollowerEdge Edge
	TargetEdge   Edge
	Alignment    Alignment
	Gap          int
}

// AnchoredPosition returns the follower origin that places its FollowerEdge
// against the target's TargetEdge, Gap units apart, aligned on the cross axis.
// The result is not clamped; see Clamp.
func AnchoredPosition(a Anchor, target Rect, follower Size) Point {
	var p Point

	switch a.FollowerEdge {
	case EdgeTop:
		// Follower sits below the target.
		p.Y = target.MinY() - follower.Height - a.Gap
	case EdgeBottom:
		p.Y = target.MaxY() + a.Gap
	case EdgeRight:
		// Follower sits left of the target.
		p.X = target.MinX() - follower.Width - a.Gap
	case EdgeLeft:
		p.X = target.MaxX() + a.Gap
	}

	if a.FollowerEdge.Vertical() {
		switch a.Alignment {
		case AlignLeading:
			p.X = target.MinX()
		case AlignTrailing:
			p.X = target.MaxX() - follower.Width
		default:
			p.X = target.MinX() + (target.Width-follower.Width)/2
		}
	} else {
		// Leading is the visual top, which is MaxY in this space.
		switch a.Alignment {
		case AlignLeading:
			p.Y = target.MaxY() - follower.Height
		case AlignTrailing:
			p.Y = target.MinY()
		default:
			p.Y = target.MinY() + (target.Height-follower.Height)/2
		}
	}

	return p
}
