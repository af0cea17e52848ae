//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/x11"
)

// PanelEvents receives window-system changes of tracked panels. Frames are
// in panel space.
type PanelEvents interface {
	PanelMoved(id PanelID, frame geometry.Rect)
	PanelResized(id PanelID, frame geometry.Rect)
	PanelHidden(id PanelID)
	PanelShown(id PanelID)
	PanelDestroyed(id PanelID)
}

// DragHandler receives pointer drags in panel space.
type DragHandler interface {
	BeginDrag(id PanelID, pointer geometry.Point) bool
	ContinueDrag(pointer geometry.Point)
	EndDrag(pointer geometry.Point)
}

type trackedWindow struct {
	frame   geometry.Rect
	visible bool
}

// X11Backend drives panels on an X11 display. Glue is emulated by moving
// followers on their target's ConfigureNotify.
type X11Backend struct {
	conn     *x11.Connection
	links    *x11.Links
	feedback *x11.Feedback
	logger   *slog.Logger

	mu      sync.Mutex
	tracked map[xproto.Window]*trackedWindow
	events  PanelEvents

	// Subscription changes must not run inside xevent callbacks, which hold
	// the callback lock; they are serialized on their own goroutine.
	subs chan func()
	done chan struct{}
	once sync.Once
}

var _ Backend = (*X11Backend)(nil)

// NewX11Backend wraps an existing X11 connection.
func NewX11Backend(conn *x11.Connection, logger *slog.Logger) *X11Backend {
	if logger == nil {
		logger = slog.Default()
	}
	b := &X11Backend{
		conn:     conn,
		links:    x11.NewLinks(),
		feedback: x11.NewFeedback(conn),
		logger:   logger,
		tracked:  make(map[xproto.Window]*trackedWindow),
		subs:     make(chan func(), 64),
		done:     make(chan struct{}),
	}
	go b.runSubscriptions()
	return b
}

func (b *X11Backend) runSubscriptions() {
	for {
		select {
		case fn := <-b.subs:
			fn()
		case <-b.done:
			return
		}
	}
}

func (b *X11Backend) subscribe(fn func()) {
	select {
	case b.subs <- fn:
	case <-b.done:
	}
}

// NewX11BackendFromDisplay opens a fresh connection to display.
func NewX11BackendFromDisplay(display string, logger *slog.Logger) (*X11Backend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewX11Backend(conn, logger), nil
}

// PanelIDForWindow formats an X11 window as a panel ID.
func PanelIDForWindow(win xproto.Window) PanelID {
	return PanelID(fmt.Sprintf("0x%x", uint32(win)))
}

// WindowForPanelID parses a hex ("0x...") or decimal window ID.
func WindowForPanelID(id PanelID) (xproto.Window, error) {
	v, err := strconv.ParseUint(string(id), 0, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %q is not a window id", ErrPanelNotFound, id)
	}
	return xproto.Window(v), nil
}

// Disconnect closes the underlying X11 connection.
func (b *X11Backend) Disconnect() {
	b.once.Do(func() { close(b.done) })
	b.feedback.Destroy()
	b.conn.Close()
}

// EventLoop runs the X11 event loop until Quit.
func (b *X11Backend) EventLoop() {
	b.conn.EventLoop()
}

// Quit stops EventLoop.
func (b *X11Backend) Quit() {
	b.conn.Quit()
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *X11Backend) XUtil() *xgbutil.XUtil {
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *X11Backend) RootWindow() xproto.Window {
	return b.conn.Root
}

// SetEventHandler routes events of tracked panels to h.
func (b *X11Backend) SetEventHandler(h PanelEvents) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = h
}

// Track starts watching id. Tracking an already tracked panel is a no-op.
func (b *X11Backend) Track(id PanelID) error {
	win, err := WindowForPanelID(id)
	if err != nil {
		return err
	}
	b.mu.Lock()
	_, ok := b.tracked[win]
	b.mu.Unlock()
	if ok {
		return nil
	}

	frame, err := b.Frame(id)
	if err != nil {
		return err
	}
	visible, err := b.conn.IsVisible(win)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPanelNotFound, id)
	}

	b.mu.Lock()
	if _, ok := b.tracked[win]; ok {
		b.mu.Unlock()
		return nil
	}
	b.tracked[win] = &trackedWindow{frame: frame, visible: visible}
	b.mu.Unlock()

	b.subscribe(func() {
		if err := b.conn.Watch(win, b); err != nil {
			b.logger.Warn("failed to watch panel", "panel", id, "error", err)
		}
	})
	return nil
}

// Untrack stops watching id and forgets its glue.
func (b *X11Backend) Untrack(id PanelID) {
	win, err := WindowForPanelID(id)
	if err != nil {
		return
	}
	b.forget(win)
}

func (b *X11Backend) forget(win xproto.Window) {
	b.links.Forget(win)
	b.mu.Lock()
	delete(b.tracked, win)
	b.mu.Unlock()
	b.subscribe(func() { b.conn.Unwatch(win) })
}

// Tracked reports whether id is being watched.
func (b *X11Backend) Tracked(id PanelID) bool {
	win, err := WindowForPanelID(id)
	if err != nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tracked[win]
	return ok
}

func (b *X11Backend) space() (x11.Space, error) {
	return b.conn.Space()
}

func (b *X11Backend) Frame(id PanelID) (geometry.Rect, error) {
	win, err := WindowForPanelID(id)
	if err != nil {
		return geometry.Rect{}, err
	}
	box, err := b.conn.WindowRect(win)
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("%w: %s", ErrPanelNotFound, id)
	}
	space, err := b.space()
	if err != nil {
		return geometry.Rect{}, err
	}
	return space.Rect(box), nil
}

func (b *X11Backend) SetFrame(id PanelID, frame geometry.Rect) error {
	win, err := WindowForPanelID(id)
	if err != nil {
		return err
	}
	space, err := b.space()
	if err != nil {
		return err
	}
	box := space.Box(frame)
	return b.conn.MoveResizeWindow(win, box.X, box.Y, box.Width, box.Height)
}

func (b *X11Backend) IsVisible(id PanelID) (bool, error) {
	win, err := WindowForPanelID(id)
	if err != nil {
		return false, err
	}
	visible, err := b.conn.IsVisible(win)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrPanelNotFound, id)
	}
	return visible, nil
}

func (b *X11Backend) SetVisible(id PanelID, visible bool) error {
	win, err := WindowForPanelID(id)
	if err != nil {
		return err
	}
	if visible {
		return b.conn.Restore(win)
	}
	return b.conn.Iconify(win)
}

// IsDraggable accepts normal, non-fullscreen windows.
func (b *X11Backend) IsDraggable(id PanelID) (bool, error) {
	win, err := WindowForPanelID(id)
	if err != nil {
		return false, err
	}
	if _, err := b.conn.WindowRect(win); err != nil {
		return false, fmt.Errorf("%w: %s", ErrPanelNotFound, id)
	}
	return b.conn.IsNormalWindow(win) && !b.conn.IsFullscreen(win), nil
}

// AttachLinked records the follower's current offset and watches the target.
func (b *X11Backend) AttachLinked(follower, target PanelID) error {
	fw, err := WindowForPanelID(follower)
	if err != nil {
		return err
	}
	tw, err := WindowForPanelID(target)
	if err != nil {
		return err
	}
	ff, err := b.Frame(follower)
	if err != nil {
		return err
	}
	tf, err := b.Frame(target)
	if err != nil {
		return err
	}
	if err := b.Track(target); err != nil {
		return err
	}
	return b.links.Attach(fw, tw, ff.Origin().Sub(tf.Origin()))
}

func (b *X11Backend) DetachLinked(follower, target PanelID) error {
	fw, err := WindowForPanelID(follower)
	if err != nil {
		return err
	}
	tw, err := WindowForPanelID(target)
	if err != nil {
		return err
	}
	b.links.Detach(fw, tw)
	return nil
}

func (b *X11Backend) WorkArea(frame geometry.Rect) (geometry.Rect, bool) {
	displays, err := b.Displays()
	if err != nil {
		return geometry.Rect{}, false
	}
	d, ok := DisplayFor(displays, frame)
	if !ok {
		return geometry.Rect{}, false
	}
	return d.Usable, true
}

// Displays returns all active displays.
func (b *X11Backend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	space, err := b.space()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: space.Rect(m.Bounds),
			Usable: space.Rect(m.Usable),
		})
	}
	return displays, nil
}

// ActivePanel returns the focused window.
func (b *X11Backend) ActivePanel() (PanelID, error) {
	win, err := b.conn.GetActiveWindow()
	if err != nil {
		return "", err
	}
	if win == 0 {
		return "", fmt.Errorf("%w: no active window", ErrPanelNotFound)
	}
	return PanelIDForWindow(win), nil
}

// ListPanels lists normal windows on the current desktop.
func (b *X11Backend) ListPanels() ([]Panel, error) {
	windows, err := b.conn.ClientWindows()
	if err != nil {
		return nil, err
	}
	space, err := b.space()
	if err != nil {
		return nil, err
	}

	panels := make([]Panel, 0, len(windows))
	for _, win := range windows {
		box, err := b.conn.WindowRect(win)
		if err != nil {
			continue
		}
		visible, err := b.conn.IsVisible(win)
		if err != nil {
			continue
		}
		panels = append(panels, Panel{
			ID:        PanelIDForWindow(win),
			AppID:     b.conn.WindowClass(win),
			Title:     b.conn.WindowTitle(win),
			Frame:     space.Rect(box),
			Visible:   visible,
			Draggable: !b.conn.IsFullscreen(win),
		})
	}
	return panels, nil
}

// ShowFeedback highlights edge of target.
func (b *X11Backend) ShowFeedback(target PanelID, edge geometry.Edge) error {
	frame, err := b.Frame(target)
	if err != nil {
		return err
	}
	space, err := b.space()
	if err != nil {
		return err
	}
	bar := x11.EdgeBar(frame, edge, x11.FeedbackThickness)
	return b.feedback.Show(space.Box(bar), x11.ColorCandidate)
}

// HideFeedback removes the edge highlight.
func (b *X11Backend) HideFeedback() {
	b.feedback.Hide()
}

// BindDrag grabs buttonStr and forwards drags to h in panel space.
func (b *X11Backend) BindDrag(buttonStr string, h DragHandler) {
	b.conn.BindDrag(buttonStr, dragAdapter{backend: b, handler: h})
}

type dragAdapter struct {
	backend *X11Backend
	handler DragHandler
}

func (a dragAdapter) point(rootX, rootY int) (geometry.Point, bool) {
	space, err := a.backend.space()
	if err != nil {
		return geometry.Point{}, false
	}
	return space.Point(rootX, rootY), true
}

func (a dragAdapter) DragBegin(client xproto.Window, rootX, rootY int) bool {
	p, ok := a.point(rootX, rootY)
	if !ok {
		return false
	}
	return a.handler.BeginDrag(PanelIDForWindow(client), p)
}

func (a dragAdapter) DragStep(rootX, rootY int) {
	if p, ok := a.point(rootX, rootY); ok {
		a.handler.ContinueDrag(p)
	}
}

func (a dragAdapter) DragEnd(rootX, rootY int) {
	if p, ok := a.point(rootX, rootY); ok {
		a.handler.EndDrag(p)
	}
}

func (b *X11Backend) handler() PanelEvents {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events
}

// WindowConfigured moves glued followers, then reports the change.
func (b *X11Backend) WindowConfigured(win xproto.Window) {
	id := PanelIDForWindow(win)
	frame, err := b.Frame(id)
	if err != nil {
		return
	}

	b.mu.Lock()
	tw, ok := b.tracked[win]
	if !ok {
		b.mu.Unlock()
		return
	}
	prev := tw.frame
	tw.frame = frame
	b.mu.Unlock()

	if prev == frame {
		return
	}
	b.moveFollowers(win, frame)

	h := b.handler()
	if h == nil {
		return
	}
	if prev.Size() != frame.Size() {
		h.PanelResized(id, frame)
	} else {
		h.PanelMoved(id, frame)
	}
}

func (b *X11Backend) moveFollowers(target xproto.Window, frame geometry.Rect) {
	for _, p := range b.links.Placements(target, frame.Origin()) {
		id := PanelIDForWindow(p.Window)
		current, err := b.Frame(id)
		if err != nil {
			continue
		}
		if err := b.SetFrame(id, current.At(p.Origin)); err != nil {
			b.logger.Warn("failed to move glued panel", "panel", id, "error", err)
		}
	}
}

func (b *X11Backend) WindowMapped(win xproto.Window)       { b.refreshVisibility(win) }
func (b *X11Backend) WindowUnmapped(win xproto.Window)     { b.refreshVisibility(win) }
func (b *X11Backend) WindowStateChanged(win xproto.Window) { b.refreshVisibility(win) }

func (b *X11Backend) refreshVisibility(win xproto.Window) {
	visible, err := b.conn.IsVisible(win)
	if err != nil {
		return
	}

	b.mu.Lock()
	tw, ok := b.tracked[win]
	if !ok || tw.visible == visible {
		b.mu.Unlock()
		return
	}
	tw.visible = visible
	h := b.events
	b.mu.Unlock()

	if h == nil {
		return
	}
	if visible {
		h.PanelShown(PanelIDForWindow(win))
	} else {
		h.PanelHidden(PanelIDForWindow(win))
	}
}

func (b *X11Backend) WindowDestroyed(win xproto.Window) {
	b.forget(win)
	if h := b.handler(); h != nil {
		h.PanelDestroyed(PanelIDForWindow(win))
	}
}
