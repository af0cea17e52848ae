package drag

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// Phase represents the current phase of the drag driver
type Phase int

const (
	// PhaseIdle means no panel is being dragged
	PhaseIdle Phase = iota
	// PhaseDragging means a session is active
	PhaseDragging
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// ErrNotDraggable is returned by Start for panels that refuse dragging.
var ErrNotDraggable = errors.New("panel is not draggable")

// Listener receives drag callbacks. The docking controller implements it.
type Listener interface {
	OnDragBegan(id platform.PanelID)
	OnDragMoved(id platform.PanelID, frame geometry.Rect)
	OnDragEnded(id platform.PanelID, frame geometry.Rect)
}

// Session is the single active drag.
type Session struct {
	ID             uuid.UUID
	PanelID        platform.PanelID
	InitialPointer geometry.Point
	InitialOrigin  geometry.Point
	LastFrame      geometry.Rect
	Started        time.Time
}

// Driver turns pointer down/move/up into drag callbacks and moves the
// dragged panel. Only one session exists at a time.
type Driver struct {
	mu       sync.Mutex
	registry platform.Registry
	listener Listener
	log      *slog.Logger
	session  *Session
}

// NewDriver creates an idle driver. logger may be nil.
func NewDriver(registry platform.Registry, listener Listener, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{registry: registry, listener: listener, log: logger}
}

// Phase returns the current phase.
func (d *Driver) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return PhaseIdle
	}
	return PhaseDragging
}

// Session returns a copy of the active session.
func (d *Driver) Session() (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return Session{}, false
	}
	return *d.session, true
}

// Start begins dragging id from pointer. It reports false without error
// when a session is already active.
func (d *Driver) Start(id platform.PanelID, pointer geometry.Point) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		return false, nil
	}
	draggable, err := d.registry.IsDraggable(id)
	if err != nil {
		return false, fmt.Errorf("drag %s: %w", id, err)
	}
	if !draggable {
		return false, fmt.Errorf("drag %s: %w", id, ErrNotDraggable)
	}
	frame, err := d.registry.Frame(id)
	if err != nil {
		return false, fmt.Errorf("drag %s: %w", id, err)
	}

	d.session = &Session{
		ID:             uuid.New(),
		PanelID:        id,
		InitialPointer: pointer,
		InitialOrigin:  frame.Origin(),
		LastFrame:      frame,
		Started:        time.Now(),
	}
	d.log.Debug("drag started", "session", d.session.ID, "panel", id, "pointer", pointer)
	d.listener.OnDragBegan(id)
	return true, nil
}

// Move applies the pointer delta since Start to the panel origin. The
// listener hears about it only when the frame changed.
func (d *Driver) Move(pointer geometry.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.session
	if s == nil {
		return
	}
	frame := d.frameAt(s, pointer)
	if frame == s.LastFrame {
		return
	}
	if err := d.registry.SetFrame(s.PanelID, frame); err != nil {
		d.log.Warn("drag move failed", "session", s.ID, "panel", s.PanelID, "error", err)
		return
	}
	s.LastFrame = frame
	d.listener.OnDragMoved(s.PanelID, frame)
}

// End finishes the session at pointer.
func (d *Driver) End(pointer geometry.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.session
	if s == nil {
		return
	}
	d.session = nil

	frame := d.frameAt(s, pointer)
	if frame != s.LastFrame {
		if err := d.registry.SetFrame(s.PanelID, frame); err != nil {
			d.log.Warn("drag end move failed", "session", s.ID, "panel", s.PanelID, "error", err)
			frame = s.LastFrame
		}
	}
	d.log.Debug("drag ended", "session", s.ID, "panel", s.PanelID,
		"frame", frame, "elapsed", time.Since(s.Started))
	d.listener.OnDragEnded(s.PanelID, frame)
}

// Cancel drops the session for id without notifying the listener. Used when
// the dragged panel disappears mid-drag.
func (d *Driver) Cancel(id platform.PanelID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil || d.session.PanelID != id {
		return false
	}
	d.log.Debug("drag cancelled", "session", d.session.ID, "panel", id)
	d.session = nil
	return true
}

func (d *Driver) frameAt(s *Session, pointer geometry.Point) geometry.Rect {
	delta := pointer.Sub(s.InitialPointer)
	return s.LastFrame.At(s.InitialOrigin.Add(delta))
}
