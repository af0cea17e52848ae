package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
)

// DragHandler receives pointer drags started with the bound button.
// Coordinates are root-relative.
type DragHandler interface {
	// DragBegin reports whether the drag of client should proceed.
	DragBegin(client xproto.Window, rootX, rootY int) bool
	DragStep(rootX, rootY int)
	DragEnd(rootX, rootY int)
}

// BindDrag grabs buttonStr (e.g. "Mod4-1") on the root window and forwards
// drags of managed clients to h.
func (c *Connection) BindDrag(buttonStr string, h DragHandler) {
	begin := func(_ *xgbutil.XUtil, rootX, rootY, _, _ int) (bool, xproto.Cursor) {
		top, err := c.WindowUnderPointer()
		if err != nil {
			return false, 0
		}
		client, ok := c.ClientForTopLevel(top)
		if !ok {
			return false, 0
		}
		return h.DragBegin(client, rootX, rootY), 0
	}
	step := func(_ *xgbutil.XUtil, rootX, rootY, _, _ int) {
		h.DragStep(rootX, rootY)
	}
	end := func(_ *xgbutil.XUtil, rootX, rootY, _, _ int) {
		h.DragEnd(rootX, rootY)
	}

	mousebind.Drag(c.XUtil, c.XUtil.Dummy(), c.Root, buttonStr, true, begin, step, end)
}
