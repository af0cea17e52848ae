package platform

import (
	"errors"

	"github.com/1broseidon/tiledock/internal/geometry"
)

// PanelID is an opaque panel identifier.
type PanelID string

// ErrPanelNotFound is returned by registries for unknown panel IDs.
var ErrPanelNotFound = errors.New("panel not found")

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds geometry.Rect
	Usable geometry.Rect
}

// Panel contains metadata and geometry for a top-level panel.
type Panel struct {
	ID        PanelID
	AppID     string
	Title     string
	Frame     geometry.Rect
	Visible   bool
	Draggable bool
}

// Registry reads and writes panel frames and visibility.
type Registry interface {
	Frame(id PanelID) (geometry.Rect, error)
	SetFrame(id PanelID, frame geometry.Rect) error
	IsVisible(id PanelID) (bool, error)
	SetVisible(id PanelID, visible bool) error
	IsDraggable(id PanelID) (bool, error)
}

// Glue keeps a follower moving with its target without engine involvement.
type Glue interface {
	AttachLinked(follower, target PanelID) error
	DetachLinked(follower, target PanelID) error
}

// WorkAreaProvider resolves the usable area a frame should be clamped into.
// ok is false when no area applies.
type WorkAreaProvider interface {
	WorkArea(frame geometry.Rect) (area geometry.Rect, ok bool)
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Registry
	Glue
	WorkAreaProvider
	Displays() ([]Display, error)
	ActivePanel() (PanelID, error)
	ListPanels() ([]Panel, error)
}

// DisplayFor returns the display whose bounds contain the center of frame,
// falling back to the first display.
func DisplayFor(displays []Display, frame geometry.Rect) (Display, bool) {
	if len(displays) == 0 {
		return Display{}, false
	}
	c := frame.Center()
	for _, d := range displays {
		if d.Bounds.Contains(c) {
			return d, true
		}
	}
	return displays[0], true
}
