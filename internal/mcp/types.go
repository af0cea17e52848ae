package mcp

import (
	"github.com/1broseidon/tiledock/internal/dock"
)

// SnapPanelInput is the input for the snap_panel tool.
type SnapPanelInput struct {
	FollowerID        string `json:"follower_id" jsonschema:"required,Panel that will follow (X11 window id, e.g. 0x3a00007)"`
	TargetID          string `json:"target_id" jsonschema:"required,Panel the follower docks onto"`
	FollowerEdge      string `json:"follower_edge" jsonschema:"required,Follower edge that touches the target: top, bottom, left or right"`
	TargetEdge        string `json:"target_edge" jsonschema:"required,Target edge the follower attaches to; must be opposite follower_edge"`
	Alignment         string `json:"alignment,omitempty" jsonschema:"Cross-axis alignment: leading, center or trailing (default: daemon default_alignment)"`
	Gap               int    `json:"gap,omitempty" jsonschema:"Distance between the touching edges (default: 0)"`
	OnTargetHidden    string `json:"on_target_hidden,omitempty" jsonschema:"hideFollower, detach or keepBinding (default: daemon setting)"`
	OnTargetDestroyed string `json:"on_target_destroyed,omitempty" jsonschema:"hideAndDetach or detach (default: daemon setting)"`
}

// PanelInput addresses one panel.
type PanelInput struct {
	PanelID string `json:"panel_id,omitempty" jsonschema:"Panel id; empty means the focused panel"`
}

// RequiredPanelInput addresses one panel that must be named.
type RequiredPanelInput struct {
	PanelID string `json:"panel_id" jsonschema:"required,Panel id"`
}

// BindingOutput wraps a single binding.
type BindingOutput struct {
	Binding dock.Binding `json:"binding"`
}

// DetachPanelOutput reports the detached panel.
type DetachPanelOutput struct {
	PanelID  string `json:"panel_id"`
	Detached bool   `json:"detached"`
}

// SnapDistanceOutput is the output for the snap_distance tool.
type SnapDistanceOutput struct {
	PanelID  string  `json:"panel_id"`
	Distance float64 `json:"distance"`
}

// ListBindingsInput is the input for the list_bindings tool.
type ListBindingsInput struct{}

// ListBindingsOutput is the output for the list_bindings tool.
type ListBindingsOutput struct {
	Bindings []dock.Binding        `json:"bindings"`
	AutoSnap []dock.AutoSnapConfig `json:"auto_snap"`
}

// SetAutoSnapInput is the input for the set_auto_snap tool.
type SetAutoSnapInput struct {
	PanelID            string   `json:"panel_id" jsonschema:"required,Panel to configure"`
	AcceptsSnapOn      []string `json:"accepts_snap_on,omitempty" jsonschema:"Edges of this panel other panels may dock onto"`
	CanSnapFrom        []string `json:"can_snap_from,omitempty" jsonschema:"Edges of this panel that may dock onto others while dragged"`
	Targets            []string `json:"targets,omitempty" jsonschema:"Allow-list of target panel ids (default: any)"`
	ProximityThreshold float64  `json:"proximity_threshold,omitempty" jsonschema:"Snap distance for this panel (default: daemon proximity_threshold)"`
	ShowFeedback       bool     `json:"show_feedback,omitempty" jsonschema:"Highlight the candidate edge while dragging"`
}

// OKOutput is returned by tools without a payload.
type OKOutput struct {
	OK bool `json:"ok"`
}

// RecentEventsInput is the input for the recent_events tool.
type RecentEventsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of events, newest last (default: 50)"`
}

// RecentEventsOutput is the output for the recent_events tool.
type RecentEventsOutput struct {
	Events []dock.Event `json:"events"`
}
