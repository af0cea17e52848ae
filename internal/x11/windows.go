package x11

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateHidden     = "_NET_WM_STATE_HIDDEN"
	stateFullscreen = "_NET_WM_STATE_FULLSCREEN"
	stickyDesktop   = 0xFFFFFFFF
)

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore geometry requests on most WMs.
	_ = c.unmaximizeWindow(windowID)

	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state)
		}
	}
	return nil
}

// WindowRect returns the window's client geometry in root coordinates.
func (c *Connection) WindowRect(windowID xproto.Window) (Box, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Box{}, err
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Box{}, err
	}

	return Box{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_UTILITY", "_NET_WM_WINDOW_TYPE_TOOLBAR":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

func (c *Connection) hasWindowType(windowID xproto.Window, typ string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	return err == nil && slices.Contains(types, typ)
}

func (c *Connection) hasState(windowID xproto.Window, state string) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	return err == nil && slices.Contains(states, state)
}

// IsFullscreen reports whether the window carries _NET_WM_STATE_FULLSCREEN.
func (c *Connection) IsFullscreen(windowID xproto.Window) bool {
	return c.hasState(windowID, stateFullscreen)
}

// IsVisible reports whether the window is mapped and not minimized. Windows
// unviewable only because their desktop is inactive count as visible.
func (c *Connection) IsVisible(windowID xproto.Window) (bool, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false, err
	}
	if attrs.MapState == xproto.MapStateUnmapped {
		return false, nil
	}
	return !c.hasState(windowID, stateHidden), nil
}

// Iconify minimizes a window via WM_CHANGE_STATE.
func (c *Connection) Iconify(windowID xproto.Window) error {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_CHANGE_STATE")), "WM_CHANGE_STATE").Reply()
	if err != nil {
		return err
	}

	const iconicState = 3
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   reply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// Restore maps an iconified window back to the normal state.
func (c *Connection) Restore(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// ClientWindows lists normal managed windows on the current desktop,
// including sticky ones.
func (c *Connection) ClientWindows() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	currentDesktop, desktopErr := ewmh.CurrentDesktopGet(c.XUtil)

	out := make([]xproto.Window, 0, len(clients))
	for _, windowID := range clients {
		if !c.IsNormalWindow(windowID) {
			continue
		}
		if desktopErr == nil {
			desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
			if err == nil && desktop != stickyDesktop && desktop != currentDesktop {
				continue
			}
		}
		out = append(out, windowID)
	}
	slices.Sort(out)
	return out, nil
}

// WindowClass returns the WM_CLASS class name.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowUnderPointer returns the top-level child of the root window under
// the pointer, which is the WM frame on reparenting window managers.
func (c *Connection) WindowUnderPointer() (xproto.Window, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Child, nil
}

// ClientForTopLevel maps a root child (a client or its WM frame) back to the
// managed client window.
func (c *Connection) ClientForTopLevel(top xproto.Window) (xproto.Window, bool) {
	if top == 0 {
		return 0, false
	}
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, false
	}
	for _, client := range clients {
		if client == top || c.topLevel(client) == top {
			return client, true
		}
	}
	return 0, false
}

func (c *Connection) topLevel(windowID xproto.Window) xproto.Window {
	for {
		tree, err := xproto.QueryTree(c.XUtil.Conn(), windowID).Reply()
		if err != nil {
			return 0
		}
		if tree.Parent == c.Root || tree.Parent == 0 {
			return windowID
		}
		windowID = tree.Parent
	}
}
