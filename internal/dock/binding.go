package dock

import (
	"fmt"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// TrackingMode says how a follower keeps up with its target.
type TrackingMode string

const (
	// TrackingLinked delegates following to the platform glue.
	TrackingLinked TrackingMode = "linked"
	// TrackingManual makes the controller reposition the follower on every
	// target move or resize.
	TrackingManual TrackingMode = "manual"
)

// HiddenPolicy is applied to followers when their target is hidden.
type HiddenPolicy string

const (
	HideFollower   HiddenPolicy = "hideFollower"
	DetachOnHidden HiddenPolicy = "detach"
	KeepBinding    HiddenPolicy = "keepBinding"
)

// Valid reports whether p is a known hidden policy.
func (p HiddenPolicy) Valid() bool {
	switch p {
	case HideFollower, DetachOnHidden, KeepBinding:
		return true
	default:
		return false
	}
}

// DestroyedPolicy is applied to followers when their target is destroyed.
type DestroyedPolicy string

const (
	HideAndDetach     DestroyedPolicy = "hideAndDetach"
	DetachOnDestroyed DestroyedPolicy = "detach"
)

// Valid reports whether p is a known destroyed policy.
func (p DestroyedPolicy) Valid() bool {
	switch p {
	case HideAndDetach, DetachOnDestroyed:
		return true
	default:
		return false
	}
}

// Policies groups the target lifecycle policies of a binding.
type Policies struct {
	OnTargetHidden    HiddenPolicy    `json:"on_target_hidden"`
	OnTargetDestroyed DestroyedPolicy `json:"on_target_destroyed"`
}

// Binding is a follower -> target docking relationship.
type Binding struct {
	FollowerID   platform.PanelID   `json:"follower_id"`
	TargetID     platform.PanelID   `json:"target_id"`
	FollowerEdge geometry.Edge      `json:"follower_edge"`
	TargetEdge   geometry.Edge      `json:"target_edge"`
	Alignment    geometry.Alignment `json:"alignment"`
	Gap          int                `json:"gap"`
	Policies
	Tracking TrackingMode `json:"tracking"`
}

// Anchor returns the geometric part of the binding.
func (b Binding) Anchor() geometry.Anchor {
	return geometry.Anchor{
		FollowerEdge: b.FollowerEdge,
		TargetEdge:   b.TargetEdge,
		Alignment:    b.Alignment,
		Gap:          b.Gap,
	}
}

// SnapRequest asks the controller to dock FollowerID onto TargetID.
type SnapRequest struct {
	FollowerID   platform.PanelID
	TargetID     platform.PanelID
	FollowerEdge geometry.Edge
	TargetEdge   geometry.Edge
	Alignment    geometry.Alignment
	Gap          int
	Policies     Policies
}

func (r SnapRequest) validate() error {
	if r.FollowerID == "" || r.TargetID == "" {
		return fmt.Errorf("%w: follower and target are required", ErrInvalidRequest)
	}
	if r.FollowerID == r.TargetID {
		return fmt.Errorf("%w: panel %s cannot snap to itself", ErrInvalidRequest, r.FollowerID)
	}
	if !r.FollowerEdge.Valid() {
		return fmt.Errorf("%w: unknown follower edge %q", ErrInvalidRequest, r.FollowerEdge)
	}
	if !r.TargetEdge.Valid() {
		return fmt.Errorf("%w: unknown target edge %q", ErrInvalidRequest, r.TargetEdge)
	}
	if !geometry.EdgesCompatible(r.FollowerEdge, r.TargetEdge) {
		return fmt.Errorf("%w: edges %s and %s are not opposite", ErrInvalidRequest, r.FollowerEdge, r.TargetEdge)
	}
	if !r.Alignment.Valid() {
		return fmt.Errorf("%w: unknown alignment %q", ErrInvalidRequest, r.Alignment)
	}
	if !r.Policies.OnTargetHidden.Valid() {
		return fmt.Errorf("%w: unknown hidden policy %q", ErrInvalidRequest, r.Policies.OnTargetHidden)
	}
	if !r.Policies.OnTargetDestroyed.Valid() {
		return fmt.Errorf("%w: unknown destroyed policy %q", ErrInvalidRequest, r.Policies.OnTargetDestroyed)
	}
	return nil
}

// AutoSnapConfig declares how a panel participates in drag-time auto-snap.
type AutoSnapConfig struct {
	PanelID       platform.PanelID   `json:"panel_id"`
	AcceptsSnapOn []geometry.Edge    `json:"accepts_snap_on,omitempty"`
	CanSnapFrom   []geometry.Edge    `json:"can_snap_from,omitempty"`
	Targets       []platform.PanelID `json:"targets,omitempty"` // empty means any panel
	Threshold     float64            `json:"proximity_threshold"`
	ShowFeedback  bool               `json:"show_feedback"`
}

// Disabled reports whether the config declares no edges at all.
func (c AutoSnapConfig) Disabled() bool {
	return len(c.AcceptsSnapOn) == 0 && len(c.CanSnapFrom) == 0
}

// allowsTarget reports whether id passes the target allow-list.
func (c AutoSnapConfig) allowsTarget(id platform.PanelID) bool {
	if len(c.Targets) == 0 {
		return true
	}
	for _, t := range c.Targets {
		if t == id {
			return true
		}
	}
	return false
}

func (c AutoSnapConfig) validate() error {
	for _, e := range c.AcceptsSnapOn {
		if !e.Valid() {
			return fmt.Errorf("%w: unknown edge %q in accepts_snap_on", ErrInvalidRequest, e)
		}
	}
	for _, e := range c.CanSnapFrom {
		if !e.Valid() {
			return fmt.Errorf("%w: unknown edge %q in can_snap_from", ErrInvalidRequest, e)
		}
	}
	if c.Threshold < 0 {
		return fmt.Errorf("%w: proximity threshold must be >= 0, got %v", ErrInvalidRequest, c.Threshold)
	}
	return nil
}

// ProximityState is the candidate that would snap if the drag ended now.
type ProximityState struct {
	DraggedID   platform.PanelID `json:"dragged_id"`
	TargetID    platform.PanelID `json:"target_id"`
	DraggedEdge geometry.Edge    `json:"dragged_edge"`
	TargetEdge  geometry.Edge    `json:"target_edge"`
	Distance    float64          `json:"distance"`
}

func (p ProximityState) sameMatch(o ProximityState) bool {
	return p.DraggedID == o.DraggedID &&
		p.TargetID == o.TargetID &&
		p.DraggedEdge == o.DraggedEdge &&
		p.TargetEdge == o.TargetEdge
}

func (p ProximityState) mentions(id platform.PanelID) bool {
	return p.DraggedID == id || p.TargetID == id
}
