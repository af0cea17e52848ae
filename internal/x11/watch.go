package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowEvents receives structure changes of watched windows. Callbacks run
// on the event loop goroutine.
type WindowEvents interface {
	WindowConfigured(win xproto.Window)
	WindowMapped(win xproto.Window)
	WindowUnmapped(win xproto.Window)
	WindowStateChanged(win xproto.Window)
	WindowDestroyed(win xproto.Window)
}

// Watch subscribes h to structure and _NET_WM_STATE changes of win.
func (c *Connection) Watch(win xproto.Window, h WindowEvents) error {
	err := xwindow.New(c.XUtil, win).Listen(xproto.EventMaskStructureNotify, xproto.EventMaskPropertyChange)
	if err != nil {
		return fmt.Errorf("failed to listen on window 0x%x: %w", win, err)
	}

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		h.WindowConfigured(win)
	}).Connect(c.XUtil, win)
	xevent.MapNotifyFun(func(_ *xgbutil.XUtil, _ xevent.MapNotifyEvent) {
		h.WindowMapped(win)
	}).Connect(c.XUtil, win)
	xevent.UnmapNotifyFun(func(_ *xgbutil.XUtil, _ xevent.UnmapNotifyEvent) {
		h.WindowUnmapped(win)
	}).Connect(c.XUtil, win)
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if name, err := xprop.AtomName(xu, ev.Atom); err == nil && name == "_NET_WM_STATE" {
			h.WindowStateChanged(win)
		}
	}).Connect(c.XUtil, win)
	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, _ xevent.DestroyNotifyEvent) {
		h.WindowDestroyed(win)
	}).Connect(c.XUtil, win)

	return nil
}

// Unwatch removes every callback attached to win.
func (c *Connection) Unwatch(win xproto.Window) {
	xevent.Detach(c.XUtil, win)
}
